package content

import "github.com/invopop/jsonschema"

// Schema describes the content YAML format for editor validation.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(new(Document))
	schema.Title = "Arena Content"
	schema.Description = "Spells, units, maps and the experience curve loaded by the arena server"
	return schema
}

// RosterSchema describes the roster YAML format.
func RosterSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(new(Roster))
	schema.Title = "Arena Roster"
	schema.Description = "Players pre-assigned to heroes before the match starts"
	return schema
}
