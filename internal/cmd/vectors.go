package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml"
	"github.com/pterm/pterm"
	"golang.org/x/term"
	yaml "gopkg.in/yaml.v3"

	"github.com/isrbind/isrbind/transform"
	"github.com/isrbind/isrbind/vector"
)

// Vectors documents the entry points of a vector table.
type Vectors struct {
	Format string       `help:"Output format; auto selects text on a terminal and markdown otherwise" enum:"auto,text,markdown,json,yaml,toml" default:"auto" env:"ISRBIND_VECTORS_FORMAT"`
	Table  TableOptions `embed:""`
}

type vectorDoc struct {
	Identifier  string `json:"identifier" yaml:"identifier" toml:"identifier"`
	EntryPoint  string `json:"entry_point" yaml:"entry_point" toml:"entry_point"`
	Index       int    `json:"index" yaml:"index" toml:"index"`
	Symbol      string `json:"symbol" yaml:"symbol" toml:"symbol"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
}

type tableDoc struct {
	Device  string      `json:"device" yaml:"device" toml:"device"`
	Prefix  string      `json:"prefix" yaml:"prefix" toml:"prefix"`
	Vectors []vectorDoc `json:"vectors" yaml:"vectors" toml:"vectors"`
}

// Run is called by Kong when the vectors command is executed.
func (c *Vectors) Run(logger *slog.Logger) error {
	format := c.Format
	if format == "auto" {
		format = "markdown"
		if term.IsTerminal(int(os.Stdout.Fd())) {
			format = "text"
		}
	}
	return c.run(logger, os.Stdout, format)
}

func (c *Vectors) run(logger *slog.Logger, w io.Writer, format string) error {
	t, err := c.Table.Load()
	if err != nil {
		return err
	}
	logger.Debug("Documenting vector table", "device", t.Device(), "vectors", t.Len(), "format", format)

	doc := newTableDoc(t)

	var data []byte
	switch format {
	case "text":
		var s string
		s, err = renderText(doc)
		data = []byte(s)
	case "markdown":
		data = []byte(renderMarkdown(doc))
	case "json":
		data, err = json.MarshalIndent(doc, "", "  ")
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(doc)
	case "toml":
		data, err = toml.Marshal(doc)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", format, err)
	}
	_, err = w.Write(data)
	return err
}

func newTableDoc(t *vector.Table) tableDoc {
	doc := tableDoc{Device: t.Device(), Prefix: t.Prefix()}
	for _, v := range t.Vectors() {
		doc.Vectors = append(doc.Vectors, vectorDoc{
			Identifier:  v.Identifier,
			EntryPoint:  transform.EntryPointName(v.Identifier),
			Index:       v.Index,
			Symbol:      v.Symbol,
			Description: v.Description,
		})
	}
	return doc
}

func renderText(doc tableDoc) (string, error) {
	data := pterm.TableData{{"Index", "Symbol", "Entry point", "Description"}}
	for _, v := range doc.Vectors {
		data = append(data, []string{strconv.Itoa(v.Index), v.Symbol, v.EntryPoint, v.Description})
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (%d vectors)\n\n%s\n", doc.Device, len(doc.Vectors), s), nil
}

func renderMarkdown(doc tableDoc) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s interrupt vectors\n\n", doc.Device)
	b.WriteString("| Index | Symbol | Entry point | Description |\n")
	b.WriteString("| ---: | --- | --- | --- |\n")
	for _, v := range doc.Vectors {
		fmt.Fprintf(&b, "| %d | `%s` | `%s` | %s |\n", v.Index, v.Symbol, v.EntryPoint, strings.ReplaceAll(v.Description, "|", `\|`))
	}
	return b.String()
}
