package preset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidationError represents a single validation error with location context.
type ValidationError struct {
	Phase   string `json:"phase"` // structural, semantic, domain
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

// ValidateBytes decodes and validates a preset file.
func ValidateBytes(data []byte) (*File, []*ValidationError) {
	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, []*ValidationError{{Phase: "structural", Message: err.Error()}}
	}
	return f, Validate(f)
}

// Validate checks f against the generated JSON Schema and the domain rules.
// An empty result means valid.
func Validate(f *File) []*ValidationError {
	if errs := validateSemantic(f); len(errs) > 0 {
		return errs
	}
	return validateDomain(f)
}

func validateSemantic(f *File) []*ValidationError {
	semantic := func(format string, args ...any) []*ValidationError {
		return []*ValidationError{{Phase: "semantic", Message: fmt.Sprintf(format, args...)}}
	}

	snapshot := *f
	if snapshot.Presets == nil {
		snapshot.Presets = []Preset{}
	}
	data, err := json.Marshal(&snapshot)
	if err != nil {
		return semantic("marshal for schema validation: %v", err)
	}
	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return semantic("generate schema: %v", err)
	}
	var schemaDoc interface{}
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return semantic("unmarshal schema: %v", err)
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource("presets-v1.json", schemaDoc); err != nil {
		return semantic("add schema resource: %v", err)
	}
	sch, err := c.Compile("presets-v1.json")
	if err != nil {
		return semantic("compile schema: %v", err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return semantic("unmarshal document: %v", err)
	}
	if err := sch.Validate(doc); err != nil {
		ve, ok := err.(*sjsonschema.ValidationError)
		if !ok {
			return semantic("%v", err)
		}
		var errs []*ValidationError
		for _, cause := range flattenValidationErrors(ve) {
			errs = append(errs, &ValidationError{
				Phase:   "semantic",
				Path:    strings.Join(cause.InstanceLocation, "/"),
				Message: fmt.Sprintf("%v", cause.ErrorKind),
			})
		}
		return errs
	}
	return nil
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

func validateDomain(f *File) []*ValidationError {
	var errs []*ValidationError
	seen := map[string]bool{}
	for i, p := range f.Presets {
		path := fmt.Sprintf("presets/%d", i)
		if seen[p.Name] {
			errs = append(errs, &ValidationError{Phase: "domain", Path: path + "/name",
				Message: fmt.Sprintf("duplicate preset name %q", p.Name)})
		}
		seen[p.Name] = true
		if _, err := p.Document(); err != nil {
			errs = append(errs, &ValidationError{Phase: "domain", Path: path + "/ini", Message: err.Error()})
		}
	}
	return errs
}
