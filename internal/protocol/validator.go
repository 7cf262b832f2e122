package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas
var schemaFiles embed.FS

const schemaBase = "https://pokerbot.local/schemas/"

// Schema names
const (
	SchemaAction  = "action"
	SchemaRequest = "request"
	SchemaState   = "state"
)

// Validator checks frames against the embedded JSON schemas. The bot itself
// is lenient about what it accepts; the validator is used to flag sloppy
// orchestrators in logs and to hold replies to the documented shape.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator compiles all embedded schemas.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	// state.json is referenced by request.json, so register everything first
	names := []string{SchemaState, SchemaAction, SchemaRequest}
	for _, name := range names {
		data, err := schemaFiles.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		if err := compiler.AddResource(schemaBase+name+".json", bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", name, err)
		}
	}

	schemas := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		schema, err := compiler.Compile(schemaBase + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		schemas[name] = schema
	}

	return &Validator{schemas: schemas}, nil
}

// Validate checks raw JSON against the named schema.
func (v *Validator) Validate(schemaName string, data []byte) error {
	schema, ok := v.schemas[schemaName]
	if !ok {
		return fmt.Errorf("schema not found: %s", schemaName)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema %s: %w", schemaName, err)
	}
	return nil
}

// ValidateValue marshals value and checks it against the named schema.
func (v *Validator) ValidateValue(schemaName string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return v.Validate(schemaName, data)
}
