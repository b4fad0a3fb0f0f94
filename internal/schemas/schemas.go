// Package schemas validates model payloads against JSON Schemas before
// they are decoded into typed values.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"atsmatch/internal/errors"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed keywords.json
var keywordsSchema []byte

//go:embed resume.json
var resumeSchema []byte

const objectSchema = `{"type": "object"}`

// Name identifies a payload schema
type Name string

const (
	Keywords Name = "keywords"
	Resume   Name = "resume"
)

var (
	compileOnce sync.Once
	compiled    map[Name]*gojsonschema.Schema
	lenient     *gojsonschema.Schema
	compileErr  error
)

func compile() {
	compiled = make(map[Name]*gojsonschema.Schema)
	for name, raw := range map[Name][]byte{Keywords: keywordsSchema, Resume: resumeSchema} {
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			compileErr = fmt.Errorf("failed to compile %s schema: %w", name, err)
			return
		}
		compiled[name] = s
	}
	lenient, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(objectSchema))
}

// Validate checks doc against the named schema. When strict is false only
// the top-level shape (a JSON object) is enforced.
func Validate(name Name, doc map[string]any, strict bool) error {
	compileOnce.Do(compile)
	if compileErr != nil {
		return errors.NewInternalError("SCHEMA_COMPILE_FAILED", "Payload schemas failed to compile", compileErr)
	}

	schema := lenient
	if strict {
		s, ok := compiled[name]
		if !ok {
			return errors.NewInternalError("UNKNOWN_SCHEMA", fmt.Sprintf("Unknown schema %q", name), nil)
		}
		schema = s
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return errors.NewParseError(errors.ErrCodeSchemaMismatch, "Payload could not be validated", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.NewParseError(errors.ErrCodeSchemaMismatch,
		fmt.Sprintf("Payload does not match %s schema", name), nil).
		WithContext("violations", strings.Join(msgs, "; "))
}
