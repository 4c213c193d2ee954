// Package textutils provides the text normalization shared by the ledger parser
// and the category matcher.
package textutils

import (
	"regexp"
	"strings"
	"unicode"
)

// compoundTerms expands glued financial abbreviations into their words.
// Hyphenated and underscored spellings ("loan-emi", "credit_card") are
// already split by punctuation stripping.
var compoundTerms = map[string][]string{
	"loanemi":     {"loan", "emi"},
	"creditcard":  {"credit", "card"},
	"mutualfund":  {"mutual", "fund"},
	"billpayment": {"bill", "payment"},
	"billpay":     {"bill", "payment"},
}

var wideGap = regexp.MustCompile(`\t+|[ \t]{2,}`)

// Normalize lowercases text, replaces punctuation with spaces (keeping word
// boundaries), expands compound abbreviations and collapses whitespace.
func Normalize(text string) string {
	return strings.Join(Tokens(text), " ")
}

// Tokens returns the normalized words of text in order, duplicates included.
func Tokens(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if parts, ok := compoundTerms[word]; ok {
			tokens = append(tokens, parts...)
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// TokenSet returns the distinct normalized words of text.
func TokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range Tokens(text) {
		set[t] = struct{}{}
	}
	return set
}

// SplitFields splits a posting line on runs of two or more spaces (or tabs),
// trimming fields and dropping empty ones.
func SplitFields(line string) []string {
	var fields []string
	for _, f := range wideGap.Split(line, -1) {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
