package agentloop

import (
	"fmt"
	"sort"
)

// ValidateArguments checks an argument map against a tool's declared
// JSON-schema parameters (the {"type":"object","properties":{...},
// "required":[...]} shape every RegisteredTool.Definition.Parameters
// already uses in core_tools.go). It returns every violation found —
// per spec §4.5 the list is never short-circuited — in a stable order
// so repeated runs over the same input produce the same message list.
func ValidateArguments(args map[string]interface{}, schema map[string]interface{}) []string {
	var errs []string

	properties, _ := schema["properties"].(map[string]interface{})

	required, _ := schema["required"].([]string)
	if required == nil {
		if raw, ok := schema["required"].([]interface{}); ok {
			for _, r := range raw {
				if s, ok := r.(string); ok {
					required = append(required, s)
				}
			}
		}
	}
	for _, key := range required {
		if _, present := args[key]; !present {
			errs = append(errs, fmt.Sprintf("Missing required parameter: %s", key))
		}
	}

	additionalAllowed := true
	if v, ok := schema["additionalProperties"]; ok {
		if b, ok := v.(bool); ok {
			additionalAllowed = b
		}
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := args[key]
		propSchema, known := properties[key]
		if !known {
			if !additionalAllowed {
				errs = append(errs, fmt.Sprintf("Unknown parameter: %s", key))
			}
			continue
		}
		propMap, ok := propSchema.(map[string]interface{})
		if !ok {
			continue
		}
		wantType, _ := propMap["type"].(string)
		if wantType == "" {
			continue
		}
		if !typeMatches(value, wantType) {
			errs = append(errs, fmt.Sprintf("Parameter '%s' should be %s", key, wantType))
		}
	}

	return errs
}

// typeMatches reports whether value is compatible with a JSON-schema
// primitive type name. Only top-level primitive checking is required
// by spec §4.5; nested array/object element shapes are not validated.
func typeMatches(value interface{}, schemaType string) bool {
	switch schemaType {
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "number":
		switch value.(type) {
		case float64, int, int64:
			return true
		default:
			return false
		}
	case "integer":
		switch v := value.(type) {
		case int, int64:
			return true
		case float64:
			return v == float64(int64(v))
		default:
			return false
		}
	case "array":
		_, ok := value.([]interface{})
		return ok
	case "object":
		_, ok := value.(map[string]interface{})
		return ok
	default:
		return true
	}
}
