package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"validation", NewValidationError(EntityProvince, "name", "is required"), ErrValidation},
		{"not found", NotFoundError{Entity: EntityDistrict, ID: "d9"}, ErrNotFound},
		{"invalid state", InvalidStateError{Entity: EntityAnnex, ID: "a1", From: "Active", Action: "approve"}, ErrInvalidState},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("command: %w", tc.err)
			if !errors.Is(wrapped, tc.sentinel) {
				t.Fatalf("expected %v to match %v", wrapped, tc.sentinel)
			}
			for _, other := range []error{ErrValidation, ErrNotFound, ErrInvalidState} {
				if other != tc.sentinel && errors.Is(wrapped, other) {
					t.Fatalf("%v unexpectedly matched %v", wrapped, other)
				}
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidationError{
		Entity:  EntityDistrict,
		Message: "missing required fields",
		Fields:  []FieldError{{Field: "name", Message: "is required"}, {Field: "province_id", Message: "is required"}},
	}
	msg := err.Error()
	for _, want := range []string{"district", "missing required fields", "name: is required", "province_id: is required"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
	if !err.HasField("province_id") || err.HasField("parent_id") {
		t.Fatalf("unexpected HasField results for %+v", err.Fields)
	}
	if got := (ValidationError{Entity: EntityUser}).Error(); got != "user: invalid input" {
		t.Fatalf("unexpected default message %q", got)
	}
}

func TestNotFoundAndInvalidStateMessages(t *testing.T) {
	if got := (NotFoundError{Entity: EntityUniversity, ID: "u3"}).Error(); got != `university "u3" not found` {
		t.Fatalf("unexpected message %q", got)
	}
	got := InvalidStateError{Entity: EntityAnnex, ID: "a2", From: "Rejected", Action: "approve"}.Error()
	if !strings.Contains(got, "approve") || !strings.Contains(got, "Rejected") {
		t.Fatalf("unexpected message %q", got)
	}
}
