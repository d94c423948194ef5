package agentrt

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// validateArgs checks params against tool's JSON schema before Execute is
// called, so a malformed tool call fails fast with a descriptive error
// instead of reaching the tool implementation's own ad-hoc field checks.
//
// Grounded on the teacher's pkg/pluginsdk/validation.go compileSchema:
// compiled schemas are cached by their raw JSON text (tool schemas are
// fixed per process, so a sync.Map keyed on the schema bytes never grows
// past one entry per registered tool).
var schemaCache sync.Map

func validateArgs(schema json.RawMessage, params json.RawMessage) error {
	if len(schema) == 0 {
		return nil
	}
	compiled, err := compileToolSchema(schema)
	if err != nil {
		return fmt.Errorf("agentrt: compile tool schema: %w", err)
	}

	var decoded any
	if len(params) == 0 {
		decoded = map[string]any{}
	} else if err := json.Unmarshal(params, &decoded); err != nil {
		return fmt.Errorf("agentrt: decode tool params: %w", err)
	}

	if err := compiled.Validate(decoded); err != nil {
		return fmt.Errorf("agentrt: tool params invalid: %w", err)
	}
	return nil
}

func compileToolSchema(schema json.RawMessage) (*jsonschema.Schema, error) {
	key := string(schema)
	if cached, ok := schemaCache.Load(key); ok {
		if compiled, ok := cached.(*jsonschema.Schema); ok {
			return compiled, nil
		}
	}

	compiled, err := jsonschema.CompileString("tool.schema.json", key)
	if err != nil {
		return nil, err
	}
	schemaCache.Store(key, compiled)
	return compiled, nil
}
