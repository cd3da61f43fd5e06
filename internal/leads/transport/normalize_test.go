package transport

import (
	"encoding/json"
	"testing"
)

func TestNormalize_DropsEmptyAndNullLeaves(t *testing.T) {
	in := map[string]interface{}{
		"firstName": "Jo",
		"budget":    "",
		"message":   "   ",
		"eventDate": nil,
		"guestCount": "40",
	}

	out := Normalize(in)

	if _, ok := out["budget"]; ok {
		t.Error("empty string should be dropped")
	}
	if _, ok := out["message"]; ok {
		t.Error("whitespace-only string should be dropped")
	}
	if _, ok := out["eventDate"]; ok {
		t.Error("null should be dropped")
	}
	if out["firstName"] != "Jo" || out["guestCount"] != "40" {
		t.Errorf("provided values must survive: %v", out)
	}
}

func TestNormalize_NestedObjectOneLevel(t *testing.T) {
	var in map[string]interface{}
	if err := json.Unmarshal([]byte(`{
		"bride": {"firstName": "Amélie", "lastName": ""},
		"groom": {"firstName": "", "lastName": null}
	}`), &in); err != nil {
		t.Fatal(err)
	}

	out := Normalize(in)

	bride, ok := out["bride"].(map[string]interface{})
	if !ok {
		t.Fatalf("bride should survive with one field: %v", out)
	}
	if bride["firstName"] != "Amélie" {
		t.Errorf("bride.firstName = %v", bride["firstName"])
	}
	if _, ok := bride["lastName"]; ok {
		t.Error("empty bride.lastName should be dropped")
	}
	if _, ok := out["groom"]; ok {
		t.Error("fully emptied nested object should be dropped")
	}
}

func TestNormalize_ListsLoseBlankEntries(t *testing.T) {
	in := map[string]interface{}{
		"venues": []interface{}{"Château A", "", "  ", nil, "Domaine B"},
		"tags":   []interface{}{"", nil},
	}

	out := Normalize(in)

	venues, ok := out["venues"].([]interface{})
	if !ok || len(venues) != 2 {
		t.Fatalf("venues = %v", out["venues"])
	}
	if venues[0] != "Château A" || venues[1] != "Domaine B" {
		t.Errorf("venues order changed: %v", venues)
	}
	if _, ok := out["tags"]; ok {
		t.Error("fully blank list should be dropped")
	}
}

func TestNormalize_NonStringScalarsPassThrough(t *testing.T) {
	in := map[string]interface{}{
		"flag":  true,
		"count": float64(3),
	}

	out := Normalize(in)

	if out["flag"] != true || out["count"] != float64(3) {
		t.Errorf("scalars must pass through: %v", out)
	}
}
