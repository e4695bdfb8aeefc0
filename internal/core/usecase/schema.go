package usecase

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// SchemaRegistry validates inbound request bodies against the embedded
// JSON Schema documents. Compiled schemas are cached per payload name.
type SchemaRegistry struct {
	cache sync.Map // name → *santhosh.Schema
}

func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{}
}

// Validate checks data against the named schema. Violations come back as a
// *domain.ValidationError listing the offending fields.
func (r *SchemaRegistry) Validate(name string, data []byte) error {
	sch, err := r.load(name)
	if err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return domain.NewValidationError("body", "invalid json")
	}

	if err := sch.Validate(v); err != nil {
		var ve *santhosh.ValidationError
		if errors.As(err, &ve) {
			return &domain.ValidationError{Fields: fieldErrors(ve)}
		}
		return domain.NewValidationError("body", err.Error())
	}
	return nil
}

func (r *SchemaRegistry) load(name string) (*santhosh.Schema, error) {
	if cached, ok := r.cache.Load(name); ok {
		return cached.(*santhosh.Schema), nil
	}

	raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown request schema %q: %w", name, err)
	}

	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft7
	if err := compiler.AddResource(name+".json", strings.NewReader(string(raw))); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", name, err)
	}
	sch, err := compiler.Compile(name + ".json")
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", name, err)
	}

	r.cache.Store(name, sch)
	return sch, nil
}

// fieldErrors flattens a validation error tree into per-field messages,
// using the instance location as the field name.
func fieldErrors(ve *santhosh.ValidationError) []domain.FieldError {
	var out []domain.FieldError
	var walk func(e *santhosh.ValidationError)
	walk = func(e *santhosh.ValidationError) {
		if len(e.Causes) == 0 {
			field := strings.TrimPrefix(e.InstanceLocation, "/")
			field = strings.ReplaceAll(field, "/", ".")
			if field == "" {
				field = "body"
			}
			out = append(out, domain.FieldError{Field: field, Message: e.Message})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(ve)
	return out
}
