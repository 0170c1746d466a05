package spec

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var documentSchema string

// Load reads and validates the specification at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading specification: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// Parse decodes and validates a specification document.
// Shape and required fields are checked against the embedded CUE schema;
// name uniqueness and the removed_modules constraint are checked afterwards.
func Parse(data []byte) (*Document, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Field: "document", Reason: err.Error()}
	}
	if raw == nil {
		return nil, &ValidationError{Field: "document", Reason: "empty document"}
	}

	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Field: "document", Reason: err.Error()}
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the constraints the schema cannot express.
func (d *Document) Validate() error {
	if d.Config.Base == "" {
		return &ValidationError{Field: "config.base", Reason: "must not be empty"}
	}
	if d.Config.Require == "" {
		return &ValidationError{Field: "config.require", Reason: "must not be empty"}
	}
	if len(d.Modules) == 0 {
		return &ValidationError{Field: "modules", Reason: "at least one module is required"}
	}

	seen := make(map[string]bool, len(d.Modules))
	for i, m := range d.Modules {
		if m.Name == "" {
			return &ValidationError{Field: fmt.Sprintf("modules.%d.name", i), Reason: "must not be empty"}
		}
		if seen[m.Name] {
			return &ValidationError{Field: fmt.Sprintf("modules.%d.name", i), Reason: fmt.Sprintf("duplicate module %q", m.Name)}
		}
		seen[m.Name] = true
	}

	for i, stub := range d.RemovedModules {
		if seen[stub.Name] {
			return &ValidationError{
				Field:  fmt.Sprintf("removed_modules.%d.name", i),
				Reason: fmt.Sprintf("module %q is also listed in modules", stub.Name),
			}
		}
	}
	return nil
}

func validateSchema(raw map[string]interface{}) error {
	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(documentSchema, cue.Filename("schema.cue"))
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: compiling specification schema: %w", schemaValue.Err())
	}
	schema := schemaValue.LookupPath(cue.ParsePath("#Document"))

	value := ctx.Encode(schemaInput(raw))
	if value.Err() != nil {
		return &ValidationError{Field: "document", Reason: value.Err().Error()}
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return schemaError(err)
	}
	return nil
}

// schemaInput drops meta.datestamp, which the schema does not constrain and
// which YAML may decode as a timestamp.
func schemaInput(raw map[string]interface{}) map[string]interface{} {
	in := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		in[k] = v
	}
	if meta, ok := raw["meta"].(map[string]interface{}); ok {
		trimmed := make(map[string]interface{}, len(meta))
		for k, v := range meta {
			if k == "datestamp" {
				continue
			}
			trimmed[k] = v
		}
		in["meta"] = trimmed
	}
	return in
}

func schemaError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ValidationError{Field: "document", Reason: err.Error()}
	}
	first := errs[0]
	field := strings.Join(first.Path(), ".")
	if field == "" {
		field = "document"
	}
	format, args := first.Msg()
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
