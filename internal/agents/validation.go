package agents

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/subspace-go/internal/utils"
)

//go:embed payload.schema.json
var payloadSchemaJSON []byte

const payloadSchemaURL = "payload.schema.json"

var compilePayloadSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(payloadSchemaURL, bytes.NewReader(payloadSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add payload schema: %w", err)
	}
	schema, err := compiler.Compile(payloadSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile payload schema: %w", err)
	}
	return schema, nil
})

// PayloadValidationError represents an error in payload validation.
type PayloadValidationError struct {
	Path    string
	Message string
}

func (e *PayloadValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("payload validation failed at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("payload validation failed: %s", e.Message)
}

// Validate checks the serialized request against the payload schema.
func (r AgentRequest) Validate() error {
	schema, err := compilePayloadSchema()
	if err != nil {
		return err
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return mapSchemaError(err)
	}
	return nil
}

// mapSchemaError converts a jsonschema ValidationError to the first leaf
// PayloadValidationError.
func mapSchemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &PayloadValidationError{Message: err.Error()}
	}

	var result error
	collectSchemaValidationErrors(ve, &result)
	if result != nil {
		return result
	}
	return &PayloadValidationError{Message: err.Error()}
}

func collectSchemaValidationErrors(err *jsonschema.ValidationError, result *error) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		*result = &PayloadValidationError{
			Path:    utils.JSONPointerToPath(err.InstanceLocation),
			Message: err.Message,
		}
		return
	}

	for _, cause := range err.Causes {
		if *result == nil {
			collectSchemaValidationErrors(cause, result)
		}
	}
}
