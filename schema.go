package appforge

import (
	"bytes"
	"embed"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

const (
	schemaIntent = "intent.json"
	schemaPlan   = "plan.json"
	schemaCode   = "code.json"
	schemaTests  = "tests.json"
)

var responseSchemas = mustCompileSchemas(schemaIntent, schemaPlan, schemaCode, schemaTests)

func mustCompileSchemas(names ...string) map[string]*jsonschema.Schema {
	compiler := jsonschema.NewCompiler()

	for _, name := range names {
		raw, err := schemaFiles.ReadFile("schemas/" + name)
		if err != nil {
			panic(err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			panic(err)
		}
		if err := compiler.AddResource(name, doc); err != nil {
			panic(err)
		}
	}

	schemas := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		schema, err := compiler.Compile(name)
		if err != nil {
			panic(err)
		}
		schemas[name] = schema
	}
	return schemas
}

// validateDocument checks a decoded response document against the named schema.
func validateDocument(name, doc string) error {
	schema, ok := responseSchemas[name]
	if !ok {
		return goerr.Wrap(ErrInvalidParameter, "unknown response schema", goerr.V("schema", name))
	}

	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(doc))
	if err != nil {
		return goerr.Wrap(ErrMalformedResponse, "failed to parse response document", goerr.V("schema", name))
	}

	if err := schema.Validate(inst); err != nil {
		return goerr.Wrap(ErrSchemaViolation, err.Error(), goerr.V("schema", name))
	}
	return nil
}
