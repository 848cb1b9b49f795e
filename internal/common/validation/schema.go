// Package validation checks JSON documents against compiled JSON schemas.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Summary joins the errors into one line, sorted by field.
func (r *ValidationResult) Summary() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.Field+": "+e.Message)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// Compile parses a JSON schema document. It fails only on an invalid schema.
func Compile(name, schemaJSON string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: s}, nil
}

// MustCompile is Compile for package-level schemas.
func MustCompile(name, schemaJSON string) *Schema {
	s, err := Compile(name, schemaJSON)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Name() string { return s.name }

// ValidateBytes validates a raw JSON document. Malformed JSON is reported as
// a single error on the document root.
func (s *Schema) ValidateBytes(doc []byte) *ValidationResult {
	return s.validate(gojsonschema.NewBytesLoader(doc))
}

// ValidateValue validates an already decoded value, e.g. job variables.
func (s *Schema) ValidateValue(v interface{}) *ValidationResult {
	return s.validate(gojsonschema.NewGoLoader(v))
}

func (s *Schema) validate(loader gojsonschema.JSONLoader) *ValidationResult {
	result, err := s.schema.Validate(loader)
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   "(root)",
			Message: err.Error(),
			Code:    "INVALID_JSON",
		}}}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

// ApifyWebhook accepts the actor-run webhook payload. Only eventType is
// required; a missing dataset id is a request error reported by the caller.
var ApifyWebhook = MustCompile("apify-webhook", `{
  "type": "object",
  "required": ["eventType"],
  "properties": {
    "eventType": {"type": "string", "minLength": 1},
    "eventData": {"type": ["object", "null"]},
    "resource": {
      "type": ["object", "null"],
      "properties": {
        "id": {"type": "string"},
        "actId": {"type": "string"},
        "status": {"type": "string"},
        "defaultDatasetId": {"type": ["string", "null"]}
      }
    }
  }
}`)

// JobFilterState accepts a filter state body as posted by the search form.
var JobFilterState = MustCompile("job-filter-state", `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "searchQuery": {"type": "string", "maxLength": 200},
    "location": {"type": "string", "maxLength": 100},
    "role": {"type": "string", "maxLength": 100},
    "workType": {"type": "string", "enum": ["", "remote", "hybrid", "onsite"]},
    "minRate": {"type": "integer"},
    "maxRate": {"type": "integer"}
  }
}`)

// JobAlertInput accepts the send-job-alert worker variables.
var JobAlertInput = MustCompile("job-alert-input", `{
  "type": "object",
  "required": ["filterQuery"],
  "anyOf": [
    {"required": ["email"]},
    {"required": ["phone"]}
  ],
  "properties": {
    "email": {"type": "string", "format": "email"},
    "phone": {"type": "string", "pattern": "^\\+[1-9][0-9]{6,14}$"},
    "filterQuery": {"type": "string"},
    "priority": {"type": "string", "enum": ["low", "normal", "high"]}
  }
}`)
