package domain

import (
	"errors"
	"testing"
)

func TestEmployeeValidate(t *testing.T) {
	valid := Employee{FirstName: "Dana", LastName: "Reyes", Email: "dana@clinic.example", Status: EmployeeActive}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid employee, got %v", err)
	}

	missing := Employee{Status: EmployeeActive}
	err := missing.Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %v", len(ve.Fields), ve.Fields)
	}

	badEmail := Employee{FirstName: "A", LastName: "B", Email: "not-an-email", Status: EmployeeActive}
	if err := badEmail.Validate(); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for bad email, got %v", err)
	}

	badStatus := Employee{FirstName: "A", LastName: "B", Email: "a@b.co", Status: "retired"}
	if err := badStatus.Validate(); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for bad status, got %v", err)
	}
}

func TestPageRequestNormalize(t *testing.T) {
	p := PageRequest{}.Normalize()
	if p.Page != 1 || p.Limit != 25 {
		t.Fatalf("expected defaults 1/25, got %d/%d", p.Page, p.Limit)
	}

	p = PageRequest{Page: 3, Limit: 1000}.Normalize()
	if p.Limit != 200 {
		t.Fatalf("expected limit clamped to 200, got %d", p.Limit)
	}
	if p.Offset() != 400 {
		t.Fatalf("expected offset 400, got %d", p.Offset())
	}
}
