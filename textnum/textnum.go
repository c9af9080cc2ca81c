// Package textnum parses numbers out of free-text, locale-formatted fields.
package textnum

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	numericRun  = regexp.MustCompile(`\d[\d.,]*`)
	groupedInt  = regexp.MustCompile(`\d{1,3}(?:[.,]\d{3})+|\d+`)
	trailingSep = regexp.MustCompile(`[.,]+$`)
)

// ParseDecimal extracts the first number in s. The rightmost of "," or "." is taken as
// the decimal separator when both appear; a lone repeated separator is a thousands mark.
// "R$ 1.297,90" -> 1297.90, "$47" -> 47, "2,5%" -> 2.5, "Consultar" -> false.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	run := numericRun.FindString(s)
	run = trailingSep.ReplaceAllString(run, "")
	if run == "" {
		return decimal.Zero, false
	}

	dot, comma := strings.Count(run, "."), strings.Count(run, ",")
	switch {
	case dot > 0 && comma > 0:
		if strings.LastIndex(run, ",") > strings.LastIndex(run, ".") {
			run = strings.ReplaceAll(run, ".", "")
			run = strings.Replace(run, ",", ".", 1)
		} else {
			run = strings.ReplaceAll(run, ",", "")
		}
	case comma > 1:
		run = strings.ReplaceAll(run, ",", "")
	case comma == 1:
		run = strings.Replace(run, ",", ".", 1)
	case dot > 1:
		run = strings.ReplaceAll(run, ".", "")
	}

	// Interleaved separators like "1.2,3.4" are rejected.
	if strings.Count(run, ".") > 1 {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(run)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseFloat is ParseDecimal as a float64.
func ParseFloat(s string) (float64, bool) {
	d, ok := ParseDecimal(s)
	if !ok {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// ParseCount extracts the first integer in s, accepting thousands separators.
// "1.234 ads" -> 1234, "12 ads Brazil" -> 12, "2,5" -> 2.
func ParseCount(s string) (int, bool) {
	raw := groupedInt.FindString(s)
	if raw == "" {
		return 0, false
	}
	raw = strings.NewReplacer(".", "", ",", "").Replace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
