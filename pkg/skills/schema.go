package skills

import "github.com/invopop/jsonschema"

// HeaderSchema describes the header block as JSON Schema. Keys other than
// name and description are allowed and preserved.
func HeaderSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&Header{})
	schema.Title = "Skill header"
	return schema
}
