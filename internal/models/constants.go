package models

// Source tags written on transaction rows.
const (
	SourceImport = "import"
	SourceManual = "manual"
)

// Fallback category names used when no keyword match clears the threshold.
const (
	CategoryOtherExpense = "Other Expense"
	CategoryOtherIncome  = "Other Income"
	CategoryShopping     = "Shopping"
)

// IncomeAccountMarker marks the credit posting of an income transaction.
const IncomeAccountMarker = "Income:"

// DateLayout is the ISO layout used for dates in reports and stores.
const DateLayout = "2006-01-02"
