package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// LedgerEntry represents a single row of the Transactions ledger. Exactly
// one of SecurityDeposits, Fees and Credits is populated on imported rows.
type LedgerEntry struct {
	Date             time.Time
	Property         string
	Unit             string
	Explanation      string // Debit/Credit Explanation column
	SecurityDeposits float64
	Fees             float64
	Credits          float64
	Debits           float64
	MarkupIncluded   bool
	MarkupRevenue    float64
	InternalNotes    string
}

// GenerateHash creates a content hash for duplicate detection across
// import runs.
func (e *LedgerEntry) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%.2f:%.2f:%.2f:%.2f",
		e.Date.Format("2006-01-02"),
		e.Property,
		e.Unit,
		e.Explanation,
		e.SecurityDeposits,
		e.Fees,
		e.Credits,
		e.Debits)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
