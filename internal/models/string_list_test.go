package models

import (
	"encoding/json"
	"testing"
)

func TestStringListDecodesLegacyShapes(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{`null`, nil},
		{`[]`, []string{}},
		{`["Box","Charger"]`, []string{"Box", "Charger"}},
		{`"Box, Charger , "`, []string{"Box", "Charger"}},
		{`""`, []string{}},
	}

	for _, tt := range tests {
		var list StringList
		if err := json.Unmarshal([]byte(tt.raw), &list); err != nil {
			t.Fatalf("decode %s: %v", tt.raw, err)
		}
		if len(list) != len(tt.want) {
			t.Fatalf("decode %s: got %v, want %v", tt.raw, list, tt.want)
		}
		for i := range list {
			if list[i] != tt.want[i] {
				t.Fatalf("decode %s: got %v, want %v", tt.raw, list, tt.want)
			}
		}
	}

	var list StringList
	if err := json.Unmarshal([]byte(`42`), &list); err == nil {
		t.Fatal("expected error for numeric value")
	}
}
