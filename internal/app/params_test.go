package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadParamsYAMLKeepsNestingAndEmptyStrings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upcoming.yaml")
	raw := `
customer: cus_123
coupon: ""
subscription_items:
  - plan: gold
    quantity: 2
  - plan: silver
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	params, err := LoadParams(path)
	if err != nil {
		t.Fatalf("LoadParams: %v", err)
	}
	if params["customer"] != "cus_123" {
		t.Fatalf("unexpected customer %#v", params["customer"])
	}
	if v, ok := params["coupon"]; !ok || v != "" {
		t.Fatalf("empty coupon not preserved: %#v", v)
	}
	items, ok := params["subscription_items"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("unexpected subscription_items %#v", params["subscription_items"])
	}
	first, ok := items[0].(map[string]any)
	if !ok || first["plan"] != "gold" || first["quantity"] != 2 {
		t.Fatalf("unexpected first item %#v", items[0])
	}
}

func TestLoadParamsJSONUsesNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "create.json")
	if err := os.WriteFile(path, []byte(`{"customer":"cus_1","days_until_due":30}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	params, err := LoadParams(path)
	if err != nil {
		t.Fatalf("LoadParams: %v", err)
	}
	if params["days_until_due"] != json.Number("30") {
		t.Fatalf("expected json.Number, got %#v", params["days_until_due"])
	}
}

func TestLoadParamsEmptyPathAndErrors(t *testing.T) {
	params, err := LoadParams("")
	if err != nil || params == nil || len(params) != 0 {
		t.Fatalf("expected empty params, got %#v err=%v", params, err)
	}
	if _, err := LoadParams(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParseKeyValues(t *testing.T) {
	got, err := ParseKeyValues([]string{"order=42", "note="})
	if err != nil {
		t.Fatalf("ParseKeyValues: %v", err)
	}
	if got["order"] != "42" || got["note"] != "" || len(got) != 2 {
		t.Fatalf("unexpected map %#v", got)
	}
	if _, err := ParseKeyValues([]string{"=x"}); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, err := ParseKeyValues([]string{"novalue"}); err == nil {
		t.Fatalf("expected error for missing =")
	}
}
