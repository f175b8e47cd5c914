// Package schemas provides JSON Schema validation for the documents the
// pipeline exchanges with the record store and the CLI.
package schemas

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	embedded "github.com/jonathan/talent-sourcing/schemas"
	"github.com/xeipuuv/gojsonschema"
)

// Schema names re-exported for callers that only import this package.
const (
	AIMatchResult    = embedded.AIMatchResult
	CandidateProfile = embedded.CandidateProfile
	RoleRequirement  = embedded.RoleRequirement
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	if ve.Schema != "" {
		sb.WriteString(fmt.Sprintf("validation against %s failed:\n", ve.Schema))
	} else {
		sb.WriteString("validation failed:\n")
	}
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

var (
	compiledMu sync.Mutex
	compiled   = map[string]*gojsonschema.Schema{}
)

// schema compiles an embedded schema once.
func schema(name string) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()
	if s, ok := compiled[name]; ok {
		return s, nil
	}

	data, err := embedded.FS.ReadFile(name)
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema not embedded", Cause: err}
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema does not compile", Cause: err}
	}
	compiled[name] = s
	return s, nil
}

// Validate marshals doc to JSON and validates it against the named embedded schema.
func Validate(name string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document for %s: %w", name, err)
	}
	return ValidateBytes(name, data)
}

// ValidateBytes validates raw JSON against the named embedded schema.
func ValidateBytes(name string, data []byte) error {
	s, err := schema(name)
	if err != nil {
		return err
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("failed to read document for %s: %w", name, err)
	}
	return resultError(name, result)
}

// ValidateFile validates a JSON file against the named embedded schema.
func ValidateFile(name, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("JSON file not found: %s", path)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ValidateBytes(name, data)
}

// resultError converts a failed gojsonschema result into a *ValidationError.
func resultError(name string, result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}
	errs := make([]FieldError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, FieldError{Field: e.Field(), Message: e.Description()})
	}
	return &ValidationError{Schema: name, Errors: errs}
}
