package validation

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestConfigValidator_Positive(t *testing.T) {
	tests := []struct {
		value   int
		wantErr bool
	}{
		{1, false},
		{0, true},
		{-3, true},
	}
	for _, tt := range tests {
		cv := NewConfigValidator("layout").Positive("batchSize", tt.value)
		if cv.HasErrors() != tt.wantErr {
			t.Errorf("Positive(%d) HasErrors = %v, want %v", tt.value, cv.HasErrors(), tt.wantErr)
		}
	}
}

func TestConfigValidator_Floats(t *testing.T) {
	tests := []struct {
		name    string
		apply   func(cv *ConfigValidator)
		wantErr bool
	}{
		{"positive ok", func(cv *ConfigValidator) { cv.PositiveFloat("gravity", 0.5) }, false},
		{"positive zero", func(cv *ConfigValidator) { cv.PositiveFloat("gravity", 0) }, true},
		{"positive NaN", func(cv *ConfigValidator) { cv.PositiveFloat("gravity", math.NaN()) }, true},
		{"non-negative zero", func(cv *ConfigValidator) { cv.NonNegativeFloat("margin", 0) }, false},
		{"non-negative Inf", func(cv *ConfigValidator) { cv.NonNegativeFloat("margin", math.Inf(1)) }, true},
		{"range inside", func(cv *ConfigValidator) { cv.RangeFloat("theta", 0.5, 0, 2) }, false},
		{"range outside", func(cv *ConfigValidator) { cv.RangeFloat("theta", 3, 0, 2) }, true},
		{"ordered", func(cv *ConfigValidator) { cv.OrderedFloat("min", 1, "max", 2) }, false},
		{"unordered", func(cv *ConfigValidator) { cv.OrderedFloat("min", 3, "max", 2) }, true},
		{"finite", func(cv *ConfigValidator) { cv.Finite("x", math.NaN()) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator("cfg")
			tt.apply(cv)
			if cv.HasErrors() != tt.wantErr {
				t.Errorf("HasErrors = %v, want %v (%v)", cv.HasErrors(), tt.wantErr, cv.Errors())
			}
		})
	}
}

func TestConfigValidator_MultipleErrors(t *testing.T) {
	err := NewConfigValidator("render").
		PositiveFloat("nodeMinSize", -1).
		NonNegativeDuration("timeout", -time.Second).
		OneOf("backend", "webgl", []string{"png", "svg", "terminal"}).
		Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"render.nodeMinSize", "render.timeout", "render.backend"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestConfigValidator_CustomAndWhen(t *testing.T) {
	sentinel := errors.New("bad")
	cv := NewConfigValidator("x").
		Custom("a", func() error { return sentinel }).
		When(false, func(cv *ConfigValidator) { cv.Positive("b", 0) })
	if len(cv.Errors()) != 1 {
		t.Fatalf("got %d errors, want 1", len(cv.Errors()))
	}
	if !errors.Is(cv.Validate(), sentinel) {
		t.Errorf("Validate() does not wrap sentinel: %v", cv.Validate())
	}
}

func TestDefaultOrAndClamp(t *testing.T) {
	if got := DefaultOr(0, 7); got != 7 {
		t.Errorf("DefaultOr(0, 7) = %d", got)
	}
	if got := DefaultOr("a", "b"); got != "a" {
		t.Errorf("DefaultOr(a, b) = %q", got)
	}
	if got := Clamp(5, 0, 1); got != 1 {
		t.Errorf("Clamp(5, 0, 1) = %v", got)
	}
	if got := Clamp(-5, 0, 1); got != 0 {
		t.Errorf("Clamp(-5, 0, 1) = %v", got)
	}
}
