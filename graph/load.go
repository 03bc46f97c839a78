package graph

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Program is the document format for files: an optional name and a list of
// blocks. A bare list of blocks is accepted as well.
type Program struct {
	Name   string   `yaml:"name,omitempty" json:"name,omitempty"`
	Blocks []Record `yaml:"blocks" json:"blocks"`
}

// Decode reads records from YAML or JSON input. JSON is a subset of YAML,
// thus workspaces exported by a host may be read unchanged.
func Decode(r io.Reader) ([]Record, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot decode block program: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind == yaml.SequenceNode {
		var records []Record
		if err := root.Decode(&records); err != nil {
			return nil, fmt.Errorf("cannot decode blocks: %w", err)
		}
		return records, nil
	}
	var prog Program
	if err := root.Decode(&prog); err != nil {
		return nil, fmt.Errorf("cannot decode block program: %w", err)
	}
	tracer().Debugf("decoded program '%s' with %d blocks", prog.Name, len(prog.Blocks))
	return prog.Blocks, nil
}

// LoadFile reads records from a YAML or JSON file.
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes records as a YAML program document.
func Encode(w io.Writer, name string, records []Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Program{Name: name, Blocks: records}); err != nil {
		return err
	}
	return enc.Close()
}
