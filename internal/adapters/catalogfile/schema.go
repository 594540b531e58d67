package catalogfile

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const (
	catalogSchema = "catalog.schema.json"
	stockSchema   = "stock.schema.json"
)

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

func compileSchemas() (map[string]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		names := []string{catalogSchema, stockSchema}
		for _, name := range names {
			data, err := schemaFS.ReadFile("schemas/" + name)
			if err != nil {
				schemasErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
				schemasErr = fmt.Errorf("add schema %s: %w", name, err)
				return
			}
		}

		compiled := make(map[string]*jsonschema.Schema, len(names))
		for _, name := range names {
			s, err := compiler.Compile(name)
			if err != nil {
				schemasErr = fmt.Errorf("compile schema %s: %w", name, err)
				return
			}
			compiled[name] = s
		}
		schemas = compiled
	})
	return schemas, schemasErr
}

// validateDocument checks raw YAML against the named schema.
// The YAML tree is normalised through JSON so the validator sees plain JSON types.
func validateDocument(schemaName, path string, raw []byte) error {
	compiled, err := compileSchemas()
	if err != nil {
		return err
	}

	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return &ErrInvalidDocument{Path: path, Problems: []string{fmt.Sprintf("parse yaml: %v", err)}}
	}
	if tree == nil {
		tree = map[string]any{}
	}

	data, err := json.Marshal(tree)
	if err != nil {
		return &ErrInvalidDocument{Path: path, Problems: []string{fmt.Sprintf("document is not plain data: %v", err)}}
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return &ErrInvalidDocument{Path: path, Problems: []string{err.Error()}}
	}

	if err := compiled[schemaName].Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return &ErrInvalidDocument{Path: path, Problems: leafProblems(ve)}
		}
		return &ErrInvalidDocument{Path: path, Problems: []string{err.Error()}}
	}
	return nil
}

func leafProblems(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		location := ve.InstanceLocation
		if location == "" {
			location = "/"
		}
		return []string{fmt.Sprintf("%s: %s", location, ve.Message)}
	}
	var problems []string
	for _, cause := range ve.Causes {
		problems = append(problems, leafProblems(cause)...)
	}
	return problems
}
