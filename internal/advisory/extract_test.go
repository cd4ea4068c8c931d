package advisory

import (
	"errors"
	"testing"
)

func TestExtractJSON_FencedObject(t *testing.T) {
	raw := "```json\n{\"brand\": \"Trek\", \"year\": 2019}\n```"

	var out map[string]any
	if err := ExtractJSON(raw, &out); err != nil {
		t.Fatalf("ExtractJSON failed: %v", err)
	}
	if out["brand"] != "Trek" {
		t.Fatalf("wrong value for brand: %v", out["brand"])
	}
	if out["year"] != float64(2019) {
		t.Fatalf("wrong value for year: %v", out["year"])
	}
}

func TestExtractJSON_ProseWrappedObject(t *testing.T) {
	raw := "Sure! Here is the analysis you asked for:\n{\"fraudRisk\": \"low\"}\nLet me know if you need anything else."

	var out struct {
		FraudRisk string `json:"fraudRisk"`
	}
	if err := ExtractJSON(raw, &out); err != nil {
		t.Fatalf("ExtractJSON failed: %v", err)
	}
	if out.FraudRisk != "low" {
		t.Fatalf("wrong fraudRisk: %q", out.FraudRisk)
	}
}

func TestExtractJSON_Array(t *testing.T) {
	raw := "The matching categories are: [\"Electronics\", \"Vehicles\"] as requested."

	var out []string
	if err := ExtractJSON(raw, &out); err != nil {
		t.Fatalf("ExtractJSON failed: %v", err)
	}
	if len(out) != 2 || out[0] != "Electronics" {
		t.Fatalf("unexpected array: %v", out)
	}
}

func TestExtractJSON_NestedObjectKeepsWidestSpan(t *testing.T) {
	raw := "{\"summary\": {\"condition\": \"used\"}, \"priceAssessment\": \"fair\"}"

	var out map[string]any
	if err := ExtractJSON(raw, &out); err != nil {
		t.Fatalf("ExtractJSON failed: %v", err)
	}
	if _, ok := out["priceAssessment"]; !ok {
		t.Fatalf("outer object truncated: %v", out)
	}
}

func TestExtractJSON_Garbage(t *testing.T) {
	for _, raw := range []string{
		"",
		"I cannot help with that request.",
		"{ definitely not json }",
		"only an opening brace {",
	} {
		var out map[string]any
		err := ExtractJSON(raw, &out)
		if !errors.Is(err, ErrMalformedOutput) {
			t.Fatalf("input %q: expected ErrMalformedOutput, got %v", raw, err)
		}
	}
}
