package service

import (
	"encoding/json"
	"math"
	"testing"
)

func TestSanitizeNonFiniteFloats(t *testing.T) {
	in := map[string]any{
		"ok":   1.5,
		"nan":  math.NaN(),
		"inf":  math.Inf(1),
		"ninf": math.Inf(-1),
		"nested": []any{
			math.NaN(),
			2.0,
		},
	}
	out := Sanitize(in).(map[string]any)
	if out["ok"] != 1.5 {
		t.Errorf("ok = %v, want 1.5", out["ok"])
	}
	for _, key := range []string{"nan", "inf", "ninf"} {
		if out[key] != nil {
			t.Errorf("%s = %v, want nil", key, out[key])
		}
	}
	nested := out["nested"].([]any)
	if nested[0] != nil || nested[1] != 2.0 {
		t.Errorf("nested = %v, want [nil 2]", nested)
	}

	if _, err := json.Marshal(out); err != nil {
		t.Fatalf("sanitized payload must marshal: %v", err)
	}
}

func TestSanitizeStructs(t *testing.T) {
	type inner struct {
		Kept    float64  `json:"kept"`
		Skipped string   `json:"skipped,omitempty"`
		Hidden  string   `json:"-"`
		Ptr     *float64 `json:"ptr"`
	}
	out := Sanitize(inner{Kept: 3, Hidden: "x"}).(map[string]any)
	if out["kept"] != 3.0 {
		t.Errorf("kept = %v, want 3", out["kept"])
	}
	if _, ok := out["skipped"]; ok {
		t.Error("empty omitempty field should be dropped")
	}
	if _, ok := out["-"]; ok {
		t.Error("json:\"-\" field should be dropped")
	}
	if _, ok := out["Hidden"]; ok {
		t.Error("json:\"-\" field should be dropped")
	}
	if out["ptr"] != nil {
		t.Errorf("nil pointer = %v, want nil", out["ptr"])
	}
}

func TestSanitizeIntKeyedMaps(t *testing.T) {
	out := Sanitize(map[int]int{2023: 4}).(map[string]any)
	if out["2023"] != 4 {
		t.Errorf("int-keyed map = %v, want string keys", out)
	}
}
