package parser

import (
	"testing"

	"github.com/ncaceres/cardbot/internal/domain"
)

func TestParsePipeSeparatedWithCombinedExpiry(t *testing.T) {
	spec := Parse("477349002646|05/27|123")
	want := domain.CardSpec{BIN: "477349002646", Month: "05", Year: "2027", CVV: "123"}
	if spec != want {
		t.Fatalf("unexpected spec: %+v", spec)
	}
}

func TestParseSpaceSeparated(t *testing.T) {
	spec := Parse("  477349002646   05  27 123 ")
	want := domain.CardSpec{BIN: "477349002646", Month: "05", Year: "2027", CVV: "123"}
	if spec != want {
		t.Fatalf("unexpected spec: %+v", spec)
	}
}

func TestParseStripsPlaceholderAndSwapsReversedExpiry(t *testing.T) {
	spec := Parse("477349xxxx|2025|06")
	want := domain.CardSpec{BIN: "477349", Month: "06", Year: "2025", CVV: ""}
	if spec != want {
		t.Fatalf("unexpected spec: %+v", spec)
	}
}

func TestParseFourDigitExpirySplit(t *testing.T) {
	spec := Parse("515462|11/2028|999")
	want := domain.CardSpec{BIN: "515462", Month: "11", Year: "2028", CVV: "999"}
	if spec != want {
		t.Fatalf("unexpected spec: %+v", spec)
	}
}

func TestParseDropsLetteredCVV(t *testing.T) {
	spec := Parse("477349|05|2027|xxx")
	if spec.CVV != "" {
		t.Fatalf("expected lettered cvv to be dropped, got %q", spec.CVV)
	}
	if spec.Month != "05" || spec.Year != "2027" {
		t.Fatalf("unexpected expiry: %+v", spec)
	}
}

func TestParseBinOnly(t *testing.T) {
	spec := Parse("477349002646")
	if spec.BIN != "477349002646" {
		t.Fatalf("unexpected bin %q", spec.BIN)
	}
	if spec.Month != "" || spec.Year != "" || spec.CVV != "" {
		t.Fatalf("expected empty optional fields, got %+v", spec)
	}
}

func TestParseEmpty(t *testing.T) {
	spec := Parse("   ")
	if spec != (domain.CardSpec{}) {
		t.Fatalf("expected zero spec, got %+v", spec)
	}
}

func TestParseTwoDigitYearNotMistakenForMonth(t *testing.T) {
	// A plain 2-digit year must expand, not trigger the reversed-order swap.
	spec := Parse("477349|12|31")
	want := domain.CardSpec{BIN: "477349", Month: "12", Year: "2031"}
	if spec != want {
		t.Fatalf("unexpected spec: %+v", spec)
	}
}
