package tools

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/vibelang-org/vibe/registry"
)

// paramJSONType maps a declared tool parameter's vibe type name onto the
// JSON Schema primitive it corresponds to (§4.8).
func paramJSONType(p registry.ParamSchema) string {
	switch p.Type {
	case "number":
		return "number"
	case "boolean":
		return "boolean"
	case "json":
		return "object"
	default:
		// text, prompt, and imported types all render as strings: imported
		// object shapes aren't reified into JSON Schema here, so a tool
		// taking one is documented but degrades to a free-form string.
		return "string"
	}
}

// buildInputSchema renders a tool's declared parameters into the JSON
// Schema the MCP SDK advertises to external clients, building each
// property from the @param-annotated registry.ParamSchema (§4.8).
func buildInputSchema(td *registry.ToolDescriptor) *jsonschema.Schema {
	props := make(map[string]*jsonschema.Schema, len(td.Params))
	required := make([]string, 0, len(td.Params))
	for _, p := range td.Params {
		s := &jsonschema.Schema{
			Type:        paramJSONType(p),
			Description: p.Description,
		}
		for depth := 0; depth < p.ArrayDepth; depth++ {
			s = &jsonschema.Schema{Type: "array", Items: s}
		}
		props[p.Name] = s
		required = append(required, p.Name)
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}
