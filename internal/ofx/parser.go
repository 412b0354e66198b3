// Package ofx parses OFX/QFX bank statements into ledger debit rows, so
// that expenses paid from the operating account can be imported alongside
// tenant credits.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/stantpm/propflow/internal/model"
	"github.com/stantpm/propflow/internal/registry"
)

// BankDebit is one outgoing payment taken from a bank statement.
type BankDebit struct {
	Date        time.Time
	Description string
	AccountID   string
	CheckNumber string
	Amount      float64
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Fix missing closing angle brackets in SGML-style OFX files
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX statement and returns its outgoing payments.
// Deposits are not ledger debits and are skipped.
func (p *Parser) ParseFile(_ context.Context, reader io.Reader) ([]BankDebit, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var debits []BankDebit
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if stmt.BankTranList == nil {
				continue
			}
			accountID := string(stmt.BankAcctFrom.AcctID)
			for _, tx := range stmt.BankTranList.Transactions {
				if d, ok := p.convertTransaction(tx, accountID); ok {
					debits = append(debits, d)
				}
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			if stmt.BankTranList == nil {
				continue
			}
			accountID := string(stmt.CCAcctFrom.AcctID)
			for _, tx := range stmt.BankTranList.Transactions {
				if d, ok := p.convertTransaction(tx, accountID); ok {
					debits = append(debits, d)
				}
			}
		}
	}

	slog.Info("Parsed OFX file",
		"debits", len(debits),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return debits, nil
}

// convertTransaction turns one OFX transaction into a bank debit. The
// returned bool is false for deposits and zero-amount rows.
func (p *Parser) convertTransaction(tx ofxgo.Transaction, accountID string) (BankDebit, bool) {
	amount, _ := tx.TrnAmt.Float64()
	// OFX uses negative amounts for money leaving the account.
	if amount >= 0 {
		return BankDebit{}, false
	}

	return BankDebit{
		Date:        tx.DtPosted.Time,
		Description: p.extractDescription(tx),
		AccountID:   accountID,
		CheckNumber: string(tx.CheckNum),
		Amount:      -amount,
	}, true
}

// extractDescription picks the most useful free-text field.
func (p *Parser) extractDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	name := strings.TrimSpace(string(tx.Name))
	if name == "" {
		name = strings.TrimSpace(string(tx.Memo))
	}
	return name
}

// ToLedgerEntries converts bank debits to ledger rows, resolving each
// description against the property registry. Unmatched debits keep an
// empty property and carry the description in the notes, so they can be
// assigned by hand before they count toward any report.
func ToLedgerEntries(debits []BankDebit, reg *registry.Registry, markupIncluded bool) []model.LedgerEntry {
	entries := make([]model.LedgerEntry, 0, len(debits))
	for _, d := range debits {
		entry := model.LedgerEntry{
			Date:           d.Date,
			Explanation:    d.Description,
			Debits:         d.Amount,
			MarkupIncluded: markupIncluded,
		}
		if property, ok := reg.Match(d.Description); ok {
			entry.Property = property.Name
		}

		notes := "account " + d.AccountID
		if d.CheckNumber != "" {
			notes += ", check " + d.CheckNumber
		}
		entry.InternalNotes = notes

		entries = append(entries, entry)
	}
	return entries
}
