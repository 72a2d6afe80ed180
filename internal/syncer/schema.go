package syncer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed sync_request.schema.json
var syncRequestSchema []byte

const schemaResourceName = "sync_request.schema.json"

// compileEnvelopeSchema compiles the embedded batch-envelope schema.
// The schema only pins the envelope shape (top-level object, operations as an
// array of objects); timestamps and per-operation payloads are validated in
// Go so their errors can name the offending field precisely.
func compileEnvelopeSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(syncRequestSchema))
	if err != nil {
		return nil, fmt.Errorf("error parsing embedded envelope schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResourceName, doc); err != nil {
		return nil, fmt.Errorf("error adding envelope schema resource: %w", err)
	}

	schema, err := compiler.Compile(schemaResourceName)
	if err != nil {
		return nil, fmt.Errorf("error compiling envelope schema: %w", err)
	}

	return schema, nil
}

// validateShape checks the raw request body against the envelope schema and
// converts any violation into a *BadRequestError naming the closest field.
func (e *Engine) validateShape(body []byte) error {
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return badRequest("batch", "body is not valid JSON: %v", err)
	}

	if err := e.schema.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return badRequest(schemaErrorField(verr), "%v", verr)
		}
		return badRequest("batch", "%v", err)
	}

	return nil
}

// schemaErrorField derives a field name from the instance location of the
// deepest schema violation, falling back to "batch" for top-level problems.
func schemaErrorField(verr *jsonschema.ValidationError) string {
	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	if len(leaf.InstanceLocation) == 0 {
		return "batch"
	}

	return strings.Join(leaf.InstanceLocation, ".")
}
