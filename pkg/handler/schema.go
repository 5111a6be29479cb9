package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/adrianliechti/ingester/pkg/provider"

	"github.com/google/jsonschema-go/jsonschema"
)

var ErrInvalidResponse = errors.New("invalid model response")

// Schema derives a structured-output schema from the shape of T.
func Schema[T any](name, description string) *provider.Schema {
	s, err := jsonschema.For[T](nil)

	if err != nil {
		panic(fmt.Sprintf("invalid response type %T: %v", *new(T), err))
	}

	data, err := json.Marshal(s)

	if err != nil {
		panic(fmt.Sprintf("encoding schema of %T: %v", *new(T), err))
	}

	var properties map[string]any

	if err := json.Unmarshal(data, &properties); err != nil {
		panic(fmt.Sprintf("decoding schema of %T: %v", *new(T), err))
	}

	return &provider.Schema{
		Name:        name,
		Description: description,

		Schema: properties,
	}
}

// Decode parses a JSON model response into T and validates it against the schema of T.
func Decode[T any](text string) (T, error) {
	var result T

	data := []byte(Unfence(text))

	var instance any

	if err := json.Unmarshal(data, &instance); err != nil {
		return result, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	schema, err := jsonschema.For[T](nil)

	if err != nil {
		return result, err
	}

	// models may add keys of their own
	schema.AdditionalProperties = nil

	resolved, err := schema.Resolve(nil)

	if err != nil {
		return result, err
	}

	if err := resolved.Validate(instance); err != nil {
		return result, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	return result, nil
}

// Unfence strips markdown code fences and any prose around a JSON object.
func Unfence(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start >= 0 && end > start {
		return text[start : end+1]
	}

	return strings.TrimSpace(text)
}
