package agentloop

import "testing"

func readFileSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"file_path": map[string]interface{}{"type": "string"},
			"offset":    map[string]interface{}{"type": "integer"},
			"recursive": map[string]interface{}{"type": "boolean"},
		},
		"required":             []string{"file_path"},
		"additionalProperties": false,
	}
}

func TestValidateArgumentsValidIsEmpty(t *testing.T) {
	errs := ValidateArguments(map[string]interface{}{"file_path": "a.go"}, readFileSchema())
	if len(errs) != 0 {
		t.Fatalf("errs = %v, want empty", errs)
	}
}

func TestValidateArgumentsMissingRequired(t *testing.T) {
	errs := ValidateArguments(map[string]interface{}{}, readFileSchema())
	if len(errs) != 1 || errs[0] != "Missing required parameter: file_path" {
		t.Fatalf("errs = %v", errs)
	}
}

func TestValidateArgumentsMultipleMissingRequiredCountsEach(t *testing.T) {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"a": map[string]interface{}{"type": "string"},
			"b": map[string]interface{}{"type": "string"},
		},
		"required": []string{"a", "b"},
	}
	errs := ValidateArguments(map[string]interface{}{}, schema)
	if len(errs) != 2 {
		t.Fatalf("errs = %v, want 2 errors", errs)
	}
}

func TestValidateArgumentsUnknownParameter(t *testing.T) {
	errs := ValidateArguments(map[string]interface{}{
		"file_path": "a.go",
		"bogus":     "x",
	}, readFileSchema())
	if len(errs) != 1 || errs[0] != "Unknown parameter: bogus" {
		t.Fatalf("errs = %v", errs)
	}
}

func TestValidateArgumentsAdditionalPropertiesAllowedByDefault(t *testing.T) {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"a": map[string]interface{}{"type": "string"},
		},
		"required": []string{"a"},
	}
	errs := ValidateArguments(map[string]interface{}{"a": "x", "extra": 1}, schema)
	if len(errs) != 0 {
		t.Fatalf("errs = %v, want empty (additionalProperties defaults to allowed)", errs)
	}
}

func TestValidateArgumentsTypeMismatch(t *testing.T) {
	errs := ValidateArguments(map[string]interface{}{
		"file_path": "a.go",
		"offset":    "not-a-number",
	}, readFileSchema())
	if len(errs) != 1 || errs[0] != "Parameter 'offset' should be integer" {
		t.Fatalf("errs = %v", errs)
	}
}

func TestValidateArgumentsDoesNotShortCircuit(t *testing.T) {
	errs := ValidateArguments(map[string]interface{}{
		"offset": "wrong-type",
		"bogus":  "x",
	}, readFileSchema())
	// Missing file_path, bogus unknown, offset wrong type: three errors.
	if len(errs) != 3 {
		t.Fatalf("errs = %v, want 3", errs)
	}
}

func TestTypeMatchesIntegerAcceptsWholeFloat(t *testing.T) {
	if !typeMatches(float64(3), "integer") {
		t.Error("3.0 should match integer")
	}
	if typeMatches(float64(3.5), "integer") {
		t.Error("3.5 should not match integer")
	}
}
