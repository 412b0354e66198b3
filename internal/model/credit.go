package model

import "time"

// CreditRow is a normalized row from a tenant-credit export file, produced
// by matching configured column labels against the file's header row.
type CreditRow struct {
	Date        time.Time
	Amount      float64
	Property    string // free text until resolved against the registry
	Unit        string
	Category    string
	Subcategory string
}
