package spec

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Emitter writes specification documents as YAML.
type Emitter struct {
	w io.Writer
}

// NewEmitter creates a new specification emitter.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit writes doc. Field order follows the Document struct and list order is
// preserved; nothing is sorted or merged.
func (e *Emitter) Emit(doc *Document) error {
	enc := yaml.NewEncoder(e.w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding specification: %w", err)
	}
	return enc.Close()
}

// Save writes doc to path, replacing any existing file.
func Save(doc *Document, path string) error {
	var buf bytes.Buffer
	if err := NewEmitter(&buf).Emit(doc); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing specification: %w", err)
	}
	return nil
}
