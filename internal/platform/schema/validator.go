// Package schema checks a stored patient document against its JSON schema.
// Loading never depends on it; it backs the check command only.
package schema

import (
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// DocumentSchema describes {"patients": [...]} with typed patient fields and
// tagged records. Diagnosis records must carry a string diagnosis.
const DocumentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "patients": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["patient_id", "name", "dob", "gender"],
        "properties": {
          "patient_id": {"type": "string"},
          "name": {"type": "string"},
          "dob": {"type": "string"},
          "gender": {"type": "string"},
          "records": {
            "type": ["array", "null"],
            "items": {
              "type": "object",
              "required": ["type"],
              "properties": {"type": {"type": "string"}},
              "if": {"properties": {"type": {"const": "diagnosis"}}},
              "then": {
                "required": ["diagnosis"],
                "properties": {"diagnosis": {"type": "string"}}
              }
            }
          }
        }
      }
    }
  }
}`

// Validator holds the compiled document schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles DocumentSchema.
func NewValidator() (*Validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(DocumentSchema))
	if err != nil {
		return nil, fmt.Errorf("invalid schema definition: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Validate returns one message per schema violation. The error is non-nil
// only when the data cannot be checked at all, e.g. malformed JSON.
func (v *Validator) Validate(data []byte) ([]string, error) {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validation execution failed: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return issues, nil
}

// ValidateFile reads and validates the document at path.
func (v *Validator) ValidateFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return v.Validate(data)
}
