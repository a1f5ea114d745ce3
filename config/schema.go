package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// SchemaID is the $id of the generated schema.
const SchemaID = "https://grovetools.dev/schemas/places.schema.json"

// GenerateSchema reflects the JSON Schema for places.yml from Config.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Unknown keys are typos; reject them.
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		// Every key is optional; defaults fill the gaps.
		RequiredFromJSONSchemaTags: true,
		FieldNameTag:               "yaml",
	}

	schema := r.Reflect(&Config{})
	schema.ID = SchemaID
	schema.Title = "places configuration"
	schema.Description = "Configuration for the places manager and daemon."
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return json.MarshalIndent(schema, "", "  ")
}
