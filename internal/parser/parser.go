package parser

import (
	"io"

	"fjacquet/ledger-import/internal/models"
)

// Parser turns an uploaded document into parsed transactions.
type Parser interface {
	// Parse reads the whole of r and returns the transactions in input order.
	// Malformed entries are dropped and logged; only read failures are returned.
	Parse(r io.Reader) ([]models.ParsedTransaction, error)
}
