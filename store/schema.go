package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const forestSchemaURL = "https://notetree.local/forest.schema.json"

//go:embed forest.schema.json
var forestSchemaJSON []byte

func compileForestSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(forestSchemaURL, bytes.NewReader(forestSchemaJSON)); err != nil {
		return nil, fmt.Errorf("error adding forest schema: %w", err)
	}
	schema, err := compiler.Compile(forestSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("error compiling forest schema: %w", err)
	}
	return schema, nil
}

// validateForest checks raw forest JSON against the persisted shape
func (s *CampaignStore) validateForest(data []byte) error {
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidForest, err)
	}
	if err := s.schema.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidForest, err)
	}
	return nil
}
