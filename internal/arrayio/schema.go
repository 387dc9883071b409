package arrayio

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// documentSchema accepts either a bare (possibly nested) list of numbers or
// an object carrying dtype, shape and data. Non-finite floats are spelled
// as strings since JSON has no literal for them.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$defs": {
    "value": {
      "oneOf": [
        {"type": "number"},
        {"enum": ["NaN", "nan", "Infinity", "+Infinity", "-Infinity", "inf", "+inf", "-inf"]}
      ]
    },
    "nested": {
      "oneOf": [
        {"$ref": "#/$defs/value"},
        {"type": "array", "items": {"$ref": "#/$defs/nested"}}
      ]
    },
    "document": {
      "type": "object",
      "required": ["data"],
      "additionalProperties": false,
      "properties": {
        "dtype": {"enum": ["int32", "int64", "int", "float32", "float64", "float"]},
        "shape": {"type": "array", "items": {"type": "integer", "minimum": 0}},
        "data": {"$ref": "#/$defs/nested"}
      }
    }
  },
  "oneOf": [
    {"$ref": "#/$defs/nested"},
    {"$ref": "#/$defs/document"}
  ]
}`

const schemaURL = "pctl-array.json"

var (
	compiledSchema *jsonschema.Schema
	compileErr     error
	compileOnce    sync.Once
)

// schema compiles the document schema once per process.
func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchema))
		if err != nil {
			compileErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = err
			return
		}
		compiledSchema, compileErr = c.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}
