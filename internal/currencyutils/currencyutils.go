// Package currencyutils parses and formats the amounts written in ledger postings.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// DefaultSymbol is the currency symbol written by the ledger exporter.
const DefaultSymbol = "₹"

// mojibakeRupee is "₹" encoded as UTF-8 and decoded as Windows-1252,
// as found in files produced by older exports.
const mojibakeRupee = "â‚¹"

var (
	currencyCodes = regexp.MustCompile(`(?i)\b(INR|USD|EUR|GBP|CHF|Rs\.?)`)
	plainAmount   = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)
)

// ParseAmount parses a posting amount such as "1,234.50", "₹1,234.50" or "-500".
// Currency symbols, currency codes, whitespace and thousands separators are stripped.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(amountStr)
	if standardized == "" {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': empty amount", amountStr)
	}
	if !plainAmount.MatchString(standardized) {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': not a decimal number", amountStr)
	}

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	if err := CheckPrecision(amount); err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// MinorUnits is the number of decimal places an amount may carry.
const MinorUnits = 2

// CheckPrecision rejects amounts finer than one minor unit. Trailing zeros
// are fine: "10.500" is 10.50.
func CheckPrecision(amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(MinorUnits)) {
		return fmt.Errorf("amount %s has more than %d decimal places", amount, MinorUnits)
	}
	return nil
}

// StandardizeAmount removes everything but sign, digits and the decimal point.
// Handles patterns like "₹1,234.56", "$ 1,234.56", "INR 1'234.56" and "-₹500".
func StandardizeAmount(amountStr string) string {
	amountStr = strings.ReplaceAll(amountStr, mojibakeRupee, "")
	amountStr = currencyCodes.ReplaceAllString(amountStr, "")

	var b strings.Builder
	for _, r := range amountStr {
		switch {
		case unicode.Is(unicode.Sc, r), unicode.IsSpace(r):
		case r == ',' || r == '\'':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatAmount formats amount with two decimals, thousands separators and
// the given currency symbol, e.g. "₹1,234.56" or "-₹20.00".
func FormatAmount(amount decimal.Decimal, symbol string) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}

	fixed := amount.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}

	return sign + symbol + grouped.String() + "." + frac
}
