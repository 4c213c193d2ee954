package categorizer

import "strings"

// synonymGroup adds a fixed vocabulary to every category whose lowercase
// name contains pattern.
type synonymGroup struct {
	pattern  string
	synonyms []string
}

// synonymGroups is checked in order; a name may absorb several groups
// ("Investment Returns" takes both investment lists).
var synonymGroups = []synonymGroup{
	{"salary", []string{"salary", "wages", "pay", "payroll", "employment", "income salary"}},
	{"investment return", []string{
		"investment return", "mutual fund", "mf", "returns", "dividend",
		"interest", "investment income", "redemption", "redeemed",
	}},
	{"freelance", []string{"freelance", "contract", "consulting", "project", "gig", "freelance income"}},
	{"other income", []string{"other", "miscellaneous", "misc", "other income"}},
	{"deposit", []string{"deposit", "cash deposit", "bank deposit"}},
	{"food", []string{
		"grocery", "groceries", "food", "dining", "restaurant", "swiggy",
		"zomato", "supermarket", "mart", "bazaar",
	}},
	{"utilit", []string{
		"electricity", "electric", "power", "utility", "utilities", "internet",
		"broadband", "water", "gas", "bill payment", "utility bill",
	}},
	{"transport", []string{
		"transport", "fuel", "petrol", "diesel", "gas", "metro", "bus",
		"taxi", "uber", "ola", "travel", "transportation", "cab ride",
	}},
	{"health", []string{
		"health", "medical", "doctor", "hospital", "pharmacy", "medicine",
		"healthcare", "clinic", "prescription", "fitness", "gym", "medical expense",
	}},
	{"shopping", []string{
		"shopping", "purchase", "store", "retail", "amazon", "flipkart",
		"mall", "market", "buy", "online", "shop", "shopping expense",
	}},
	{"emi", []string{
		"emi", "loan", "payment", "credit", "card", "mortgage", "debt",
		"installment", "finance", "insurance", "repaid", "friend",
		"loan emi", "credit card payment", "loan payment", "personal loan",
	}},
	{"investment", []string{
		"investment", "invest", "mutual fund", "mf", "stocks", "shares",
		"securities", "sip", "portfolio", "redeemed", "investment purchase",
	}},
	{"entertainment", []string{
		"entertainment", "movie", "theatre", "recreation", "game",
		"sports", "leisure", "fun", "entertainment expense",
	}},
	{"transfer", []string{
		"transfer", "mov", "internal", "account transfer",
		"internal movement", "between accounts",
	}},
}

// paymentCompounds is added to categories named after EMIs or payments.
var paymentCompounds = []string{"emi", "loan emi", "loan payment", "monthly payment", "installment"}

// keyTerms earn a bonus when they appear in both texts.
var keyTerms = map[string]struct{}{
	"emi":        {},
	"loan":       {},
	"credit":     {},
	"payment":    {},
	"salary":     {},
	"investment": {},
}

// synonymsFor returns the phrases a category named name absorbs.
func synonymsFor(name string) []string {
	lower := strings.ToLower(strings.TrimSpace(name))

	var phrases []string
	for _, g := range synonymGroups {
		if strings.Contains(lower, g.pattern) {
			phrases = append(phrases, g.synonyms...)
		}
	}
	if strings.Contains(lower, "emi") || strings.Contains(lower, "payment") {
		phrases = append(phrases, paymentCompounds...)
	}
	return phrases
}
