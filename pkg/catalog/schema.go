package catalog

import (
	"github.com/google/jsonschema-go/jsonschema"
)

// JSONSchema returns the input schema of the operation, used both for LLM
// tool binding and for toolset registration.
func (o Operation) JSONSchema() *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema)
	var required []string

	for _, param := range o.Params {
		schema := &jsonschema.Schema{
			Description: param.Description,
		}

		switch param.Type {
		case ParamTypeString:
			schema.Type = "string"
			if param.Pattern != "" {
				schema.Pattern = param.Pattern
			}
		case ParamTypeEnum:
			schema.Type = "string"
			for _, v := range param.Enum {
				schema.Enum = append(schema.Enum, v)
			}
		case ParamTypeFlag:
			schema.Type = "boolean"
		case ParamTypeInteger:
			schema.Type = "integer"
		}

		properties[param.Name] = schema

		if param.Required {
			required = append(required, param.Name)
		}
	}

	inputSchema := &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
	}

	if len(required) > 0 {
		inputSchema.Required = required
	}

	return inputSchema
}
