package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases and collapses", "  Swiggy   ORDER ", "swiggy order"},
		{"account path colons", "Expenses:Food & Dining", "expenses food dining"},
		{"hyphenated compound", "Loan-EMI for March", "loan emi for march"},
		{"underscored compound", "credit_card bill", "credit card bill"},
		{"glued compound", "MutualFund SIP", "mutual fund sip"},
		{"keeps digits", "Order #123/45", "order 123 45"},
		{"does not split inside words", "Premium membership", "premium membership"},
		{"unicode letters kept", "Café Müller", "café müller"},
		{"only punctuation", "--- !!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestTokenSet_Deduplicates(t *testing.T) {
	set := TokenSet("food FOOD food-delivery")
	assert.Len(t, set, 2)
	assert.Contains(t, set, "food")
	assert.Contains(t, set, "delivery")
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []string
	}{
		{"account and amount", "    Expenses:Food & Dining    500.00", []string{"Expenses:Food & Dining", "500.00"}},
		{"single spaces stay inside account", "    Assets:Banking:HDFC Savings", []string{"Assets:Banking:HDFC Savings"}},
		{"tab separated", "\tAssets:Cash\t₹1,000.00", []string{"Assets:Cash", "₹1,000.00"}},
		{"blank", "      ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitFields(tt.line))
		})
	}
}
