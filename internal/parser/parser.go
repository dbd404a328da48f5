// Package parser normalizes loosely-formatted card specification strings.
//
// Input arrives as up to four positional fields separated by pipes or spaces:
//
//	BIN[|MM[/YY[YY]]|YYYY|CVV]
//
// The parser is deliberately tolerant: trailing x placeholders on the BIN are
// stripped, 2-digit years are expanded, a combined MM/YY in the month slot is
// split apart, and a reversed YYYY MM ordering is corrected when unambiguous.
// Validation of the result belongs to the caller, not to this package.
package parser

import (
	"regexp"
	"strings"

	"github.com/ncaceres/cardbot/internal/domain"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	trailingXRegex  = regexp.MustCompile(`[xX]+$`)
	fourDigitYear   = regexp.MustCompile(`^20[2-3]\d$`)
	twoDigitMonth   = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
	letterRegex     = regexp.MustCompile(`[a-zA-Z]`)
)

// Parse turns a raw card-spec argument string into a CardSpec. Fields the
// input does not supply come back empty; an empty input yields an empty BIN.
func Parse(raw string) domain.CardSpec {
	text := strings.TrimSpace(raw)
	text = strings.ReplaceAll(text, "|", " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	var spec domain.CardSpec
	if text == "" {
		return spec
	}

	fields := strings.Split(text, " ")
	spec.BIN = trailingXRegex.ReplaceAllString(fields[0], "")
	if len(fields) > 1 {
		spec.Month = fields[1]
	}
	if len(fields) > 2 {
		spec.Year = fields[2]
	}
	if len(fields) > 3 {
		spec.CVV = fields[3]
	}

	// A combined MM/YY or MM/YYYY occupying the month slot shifts the
	// remaining positional fields right by one.
	if strings.Contains(spec.Month, "/") {
		parts := strings.SplitN(spec.Month, "/", 2)
		spec.Month = parts[0]
		if spec.CVV == "" && spec.Year != "" {
			spec.CVV = spec.Year
		}
		spec.Year = expandYear(parts[1])
	}

	// Reversed YYYY MM ordering: only corrected while the year field is
	// still in its raw 2-digit form, so a real 2-digit year ("27") that was
	// merely waiting for expansion is not mistaken for a month.
	if spec.Month != "" && spec.Year != "" &&
		fourDigitYear.MatchString(spec.Month) && twoDigitMonth.MatchString(spec.Year) {
		spec.Month, spec.Year = spec.Year, spec.Month
	}

	spec.Year = expandYear(spec.Year)

	// A cvv carrying letters is an x-style placeholder; degrade to unset.
	if letterRegex.MatchString(spec.CVV) {
		spec.CVV = ""
	}

	return spec
}

func expandYear(year string) string {
	if len(year) == 2 {
		return "20" + year
	}
	return year
}
