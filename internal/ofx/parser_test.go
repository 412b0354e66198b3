package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stantpm/propflow/internal/model"
	"github.com/stantpm/propflow/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20250915120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20250901120000[0:GMT]
<DTEND>20250914120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250905120000[0:GMT]
<TRNAMT>-250.00
<FITID>2025090501
<NAME>ACME PLUMBING 14 MAIN ST
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20250908120000[0:GMT]
<TRNAMT>-500.00
<FITID>2025090801
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250910120000[0:GMT]
<TRNAMT>900.00
<FITID>2025091001
<NAME>TENANT DEPOSIT
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20250914120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestParser_ParseFile(t *testing.T) {
	parser := NewParser()

	debits, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, debits, 2)

	first := debits[0]
	assert.Equal(t, "ACME PLUMBING 14 MAIN ST", first.Description)
	assert.InDelta(t, 250.0, first.Amount, 1e-9)
	assert.Equal(t, "1234567890", first.AccountID)
	assert.Equal(t, time.Date(2025, time.September, 5, 12, 0, 0, 0, time.UTC), first.Date.UTC())

	second := debits[1]
	assert.Equal(t, "1234", second.CheckNumber)
	assert.InDelta(t, 500.0, second.Amount, 1e-9)
}

func TestParser_ParseFile_DepositsSkipped(t *testing.T) {
	parser := NewParser()

	debits, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)

	for _, d := range debits {
		assert.NotEqual(t, "TENANT DEPOSIT", d.Description)
	}
}

func TestParser_ParseFile_InvalidInput(t *testing.T) {
	parser := NewParser()

	_, err := parser.ParseFile(context.Background(), strings.NewReader("this is not ofx"))
	assert.Error(t, err)
}

func TestToLedgerEntries(t *testing.T) {
	reg := registry.New([]model.Property{
		{Name: "14 Main St", KeyPattern: "main"},
	})

	debits := []BankDebit{
		{
			Date:        time.Date(2025, time.September, 5, 0, 0, 0, 0, time.UTC),
			Description: "ACME PLUMBING 14 MAIN ST",
			AccountID:   "1234567890",
			Amount:      250,
		},
		{
			Date:        time.Date(2025, time.September, 8, 0, 0, 0, 0, time.UTC),
			Description: "UNKNOWN VENDOR",
			AccountID:   "1234567890",
			CheckNumber: "1234",
			Amount:      500,
		},
	}

	entries := ToLedgerEntries(debits, reg, true)
	require.Len(t, entries, 2)

	assert.Equal(t, "14 Main St", entries[0].Property)
	assert.InDelta(t, 250.0, entries[0].Debits, 1e-9)
	assert.True(t, entries[0].MarkupIncluded)
	assert.Equal(t, "account 1234567890", entries[0].InternalNotes)

	// Unmatched debits stay unassigned for manual review.
	assert.Equal(t, "", entries[1].Property)
	assert.Equal(t, "account 1234567890, check 1234", entries[1].InternalNotes)
}
