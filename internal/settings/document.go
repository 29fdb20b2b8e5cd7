package settings

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/document.schema.json
var documentSchemaBytes []byte

const documentSchemaURL = "document.schema.json"

var (
	compiledDocumentSchema *jsonschema.Schema //nolint:gochecknoglobals
	compileOnce            sync.Once          //nolint:gochecknoglobals
	errCompile             error              //nolint:gochecknoglobals
	printer                = message.NewPrinter(language.English) //nolint:gochecknoglobals
)

// ErrInvalidDocument is returned when a stored schema document does not match the document format.
var ErrInvalidDocument = errors.New("invalid schema document")

// DocumentError lists the problems found in a schema document.
type DocumentError struct {
	Issues []string
}

func (e *DocumentError) Error() string {
	return ErrInvalidDocument.Error() + ": " + strings.Join(e.Issues, "; ")
}

func (e *DocumentError) Unwrap() error {
	return ErrInvalidDocument
}

func documentSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(documentSchemaBytes))
		if err != nil {
			errCompile = fmt.Errorf("unmarshaling document schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(documentSchemaURL, doc); err != nil {
			errCompile = fmt.Errorf("adding document schema resource: %w", err)
			return
		}

		compiledDocumentSchema, errCompile = c.Compile(documentSchemaURL)
		if errCompile != nil {
			errCompile = fmt.Errorf("compiling document schema: %w", errCompile)
		}
	})

	return compiledDocumentSchema, errCompile
}

// EncodeDocument serializes the schema into its persisted JSON form.
func EncodeDocument(s *Schema) ([]byte, error) {
	out, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding schema %s: %w", s.Key, err)
	}

	return out, nil
}

// EncodeDocumentIndent is EncodeDocument with indentation, for humans.
func EncodeDocumentIndent(s *Schema) ([]byte, error) {
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding schema %s: %w", s.Key, err)
	}

	return out, nil
}

// EncodeDocumentYAML serializes the schema as YAML.
func EncodeDocumentYAML(s *Schema) ([]byte, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding schema %s as yaml: %w", s.Key, err)
	}

	return out, nil
}

// DecodeDocument validates a persisted document against the document format,
// decodes it and checks the schema invariants.
func DecodeDocument(data []byte) (*Schema, error) {
	compiled, err := documentSchema()
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if err = compiled.Validate(inst); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, fmt.Errorf("validating schema document: %w", err)
		}

		return nil, &DocumentError{Issues: collectIssues(ve)}
	}

	var s Schema
	if err = json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if err = s.Check(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return &s, nil
}

// collectIssues flattens the leaf errors of a validation error tree.
func collectIssues(ve *jsonschema.ValidationError) []string {
	var issues []string

	var walk func(*jsonschema.ValidationError)

	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}

			return
		}

		path := "/" + strings.Join(e.InstanceLocation, "/")
		if e.ErrorKind != nil {
			issues = append(issues, path+": "+e.ErrorKind.LocalizedString(printer))
		} else {
			issues = append(issues, path+": "+e.Error())
		}
	}

	walk(ve)

	if len(issues) == 0 {
		issues = append(issues, ve.Error())
	}

	return issues
}
