package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/isrbind/isrbind/internal/codegen/common"
)

// Version prints the build version.
type Version struct{}

// Run is called by Kong when the version command is executed.
func (c *Version) Run() error {
	return c.run(os.Stdout)
}

func (c *Version) run(w io.Writer) error {
	v, err := common.GetVersion()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "isrbind %s\n", v)
	return err
}
