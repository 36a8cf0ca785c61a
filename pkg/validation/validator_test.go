package validation

import (
	"strings"
	"testing"
)

type record struct {
	ID     string    `validate:"required,typedid"`
	Count  float64   `validate:"gte=0"`
	Coords []float64 `validate:"omitempty,len=2"`
	Lat    float64   `validate:"latitude"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		rec     *record
		wantErr string
	}{
		{"valid", &record{ID: "person:1", Count: 3, Lat: 12}, ""},
		{"untyped id ok", &record{ID: "plain", Lat: 0}, ""},
		{"missing id", &record{Count: 1}, "ID: field is required"},
		{"empty suffix", &record{ID: "person:"}, "not a valid node id"},
		{"empty prefix", &record{ID: ":7"}, "not a valid node id"},
		{"negative count", &record{ID: "a", Count: -1}, "Count: must be at least 0"},
		{"bad coords", &record{ID: "a", Coords: []float64{1}}, "exactly 2"},
		{"bad latitude", &record{ID: "a", Lat: 120}, "not a latitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.rec)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestStructNil(t *testing.T) {
	if err := Struct(nil); err != ErrNilValue {
		t.Errorf("Struct(nil) = %v, want ErrNilValue", err)
	}
}

func TestVar(t *testing.T) {
	if err := Var(-1.0, "gte=0"); err == nil {
		t.Error("Var(-1, gte=0) should fail")
	}
	if err := Var(2.0, "gte=0"); err != nil {
		t.Errorf("Var(2, gte=0) = %v", err)
	}
}
