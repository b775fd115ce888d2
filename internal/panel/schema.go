package panel

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed position.schema.json
var defaultPositionSchema []byte

const schemaResource = "position.schema.json"

// SchemaValidator checks raw position records against a JSON schema.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles the schema at path, or the built-in one when
// path is empty.
func NewSchemaValidator(path string) (*SchemaValidator, error) {
	raw := defaultPositionSchema
	if p := strings.TrimSpace(path); p != "" {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read position schema failed: %w", err)
		}
		raw = data
	}
	schema, err := compileSchema(raw)
	if err != nil {
		return nil, fmt.Errorf("compile position schema failed: %w", err)
	}
	return &SchemaValidator{schema: schema}, nil
}

func compileSchema(raw []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResource, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaResource)
}

func (v *SchemaValidator) Validate(raw json.RawMessage) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	return v.schema.Validate(doc)
}
