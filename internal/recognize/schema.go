package recognize

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// outputSchema constrains the recognizer's stdout. Register fields accept
// string or number because recognizer builds disagree on which they emit;
// the normalizer owns numeric coercion. Unknown keys are tolerated because
// the engine prints diagnostic metadata that changes between versions.
const outputSchema = `{
	"type": "object",
	"properties": {
		"pumpSerialNumber": {"type": ["string", "number"]},
		"printDate":        {"type": ["string", "number"]},
		"model":            {"type": ["string", "number"]},
		"nozzles": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"nozzle":   {"type": ["string", "number"]},
					"a":        {"type": ["string", "number"]},
					"v":        {"type": ["string", "number"]},
					"totSales": {"type": ["string", "number"]}
				},
				"required": ["nozzle"]
			}
		}
	},
	"required": ["nozzles"]
}`

// compileOutputSchema compiles the stdout contract. The schema is a program
// constant, so compilation happens once per Engine, not per extraction.
func compileOutputSchema() *jsonschema.Schema {
	return jsonschema.MustCompileString("recognizer-output.json", outputSchema)
}

// validateOutput checks raw recognizer stdout against the compiled contract.
func validateOutput(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal recognizer output: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("recognizer output does not match contract: %w", err)
	}
	return nil
}
