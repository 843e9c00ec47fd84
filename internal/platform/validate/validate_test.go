package validate

import (
	"testing"

	perr "churnscope/internal/platform/errors"
)

type policy struct {
	MaxDayAge int      `json:"max_day_age" validate:"gte=0"`
	Channels  []string `json:"channels" validate:"dive,oneof=release beta aurora nightly"`
}

func TestStruct_Valid(t *testing.T) {
	p := policy{MaxDayAge: 30, Channels: []string{"release", "beta"}}
	if err := Struct(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_InvalidMapsToValidationError(t *testing.T) {
	p := policy{MaxDayAge: -1}
	err := Struct(p)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("code = %v", perr.CodeOf(err))
	}
	e, ok := perr.As(err)
	if !ok || e.Field() != "max_day_age" {
		t.Fatalf("field = %q, want json tag name", e.Field())
	}
}

func TestStruct_EnumViolation(t *testing.T) {
	p := policy{Channels: []string{"esr"}}
	err := Struct(p)
	if err == nil {
		t.Fatalf("expected enum violation")
	}
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("code = %v", perr.CodeOf(err))
	}
}
