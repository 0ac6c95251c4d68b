package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/isrbind/isrbind/internal/codegen/scanner"
)

type bindingInfo struct {
	EntryPoint string   `json:"entryPoint"`
	Function   string   `json:"function,omitempty"`
	Kind       string   `json:"kind"`
	Args       []string `json:"args,omitempty"`
	Position   string   `json:"position"`
}

func main() {
	inputs := os.Args[1:]
	if len(inputs) == 0 {
		inputs = []string{"."}
	}

	files, err := scanner.ResolveInputs(inputs, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve inputs: %v\n", err)
		os.Exit(1)
	}

	scanned, err := scanner.ScanFiles(files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to scan handlers: %v\n", err)
		os.Exit(1)
	}

	bindings := []bindingInfo{}
	for _, f := range scanned {
		for _, b := range f.Bindings {
			info := bindingInfo{
				EntryPoint: b.EntryPoint,
				Kind:       b.Kind,
				Args:       b.Args,
				Position:   b.Pos.String(),
			}
			if b.Func != nil {
				info.Function = b.Func.Name.Name
			}
			bindings = append(bindings, info)
		}
	}

	output, err := json.MarshalIndent(bindings, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(output))
}
