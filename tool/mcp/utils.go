package mcp

import (
	"encoding/json"

	"trpc.group/trpc-go/trpc-crew-go/tool"
)

// convertInputSchema converts a server manifest schema to our Schema format.
func convertInputSchema(mcpSchema any) *tool.Schema {
	fallback := &tool.Schema{Type: "object"}

	schemaBytes, err := json.Marshal(mcpSchema)
	if err != nil {
		return fallback
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaBytes, &schemaMap); err != nil {
		return fallback
	}

	schema := &tool.Schema{}
	if typeVal, ok := schemaMap["type"].(string); ok {
		schema.Type = typeVal
	}
	if descVal, ok := schemaMap["description"].(string); ok {
		schema.Description = descVal
	}
	if propsVal, ok := schemaMap["properties"].(map[string]any); ok {
		schema.Properties = convertProperties(propsVal)
	}
	if reqVal, ok := schemaMap["required"].([]any); ok {
		required := make([]string, 0, len(reqVal))
		for _, req := range reqVal {
			if reqStr, ok := req.(string); ok {
				required = append(required, reqStr)
			}
		}
		schema.Required = required
	}
	return schema
}

// convertProperties converts property definitions to map[string]*Schema.
func convertProperties(props map[string]any) map[string]*tool.Schema {
	if props == nil {
		return nil
	}
	result := make(map[string]*tool.Schema)
	for name, prop := range props {
		propMap, ok := prop.(map[string]any)
		if !ok {
			continue
		}
		propSchema := &tool.Schema{}
		if typeVal, ok := propMap["type"].(string); ok {
			propSchema.Type = typeVal
		}
		if descVal, ok := propMap["description"].(string); ok {
			propSchema.Description = descVal
		}
		result[name] = propSchema
	}
	return result
}
