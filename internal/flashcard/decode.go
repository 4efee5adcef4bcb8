package flashcard

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

var datasetSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// Format identifies a dataset file encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("unsupported dataset file extension: %q", filepath.Ext(path))
	}
}

// Decode parses a dataset document, validating it against the embedded schema
// and checking topic ID uniqueness.
func Decode(data []byte, format Format) (*Dataset, error) {
	var (
		ds     Dataset
		loader gojsonschema.JSONLoader
	)

	switch format {
	case FormatJSON:
		loader = gojsonschema.NewBytesLoader(data)
		if err := json.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("parse json dataset: %w", err)
		}
	case FormatYAML:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml dataset: %w", err)
		}
		loader = gojsonschema.NewGoLoader(doc)
		if err := yaml.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("parse yaml dataset: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s", format)
	}

	if err := validateSchema(loader); err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}
	ds.normalize()
	return &ds, nil
}

func validateSchema(doc gojsonschema.JSONLoader) error {
	schema, err := datasetSchema()
	if err != nil {
		return fmt.Errorf("load dataset schema: %w", err)
	}
	result, err := schema.Validate(doc)
	if err != nil {
		return fmt.Errorf("validate dataset: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("dataset does not match schema: %s", strings.Join(msgs, "; "))
}
