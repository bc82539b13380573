package statement

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casterly-dev/casterly/internal/model"
)

const (
	lloydsPayRow  = "\n25/12/2011,DEB,'00-00-00,0000000,Christmas presents,134.3,,200"
	lloydsEarnRow = "\n06/01/2012,TFR,'00-00-00,0000000,Tickets,,134.3,200"
)

func TestParse_LloydsPayRow(t *testing.T) {
	recs, err := Parse(strings.NewReader(lloydsPayRow), LloydsParser{}, Options{})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, model.Date(2011, 12, 25), r.Date)
	assert.Equal(t, "00-00-00 0000000", r.AccountNumber)
	assert.Equal(t, "Christmas presents", r.Description)
	assert.Equal(t, "-134.30", r.Amount.StringFixed(2))
	require.True(t, r.Balance.Valid)
	assert.Equal(t, "200.00", r.Balance.Decimal.StringFixed(2))
}

func TestParse_LloydsEarnRow(t *testing.T) {
	recs, err := Parse(strings.NewReader(lloydsEarnRow), LloydsParser{}, Options{})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, model.Date(2012, 1, 6), r.Date)
	assert.Equal(t, "Tickets", r.Description)
	assert.Equal(t, "134.30", r.Amount.StringFixed(2))
	assert.True(t, r.Amount.IsPositive())
}

func TestParse_DoubleRowsKeepOrder(t *testing.T) {
	recs, err := Parse(strings.NewReader(lloydsPayRow+lloydsEarnRow), LloydsParser{}, Options{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Christmas presents", recs[0].Description)
	assert.Equal(t, "Tickets", recs[1].Description)
}

func TestParse_ReverseOrder(t *testing.T) {
	recs, err := Parse(strings.NewReader(lloydsPayRow+lloydsEarnRow), LloydsParser{}, Options{ReverseOrder: true})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Tickets", recs[0].Description)
	assert.Equal(t, "Christmas presents", recs[1].Description)
}

func TestParse_HeaderLinesCountPhysicalLines(t *testing.T) {
	// The leading newline is physical line 1, so one header line skips nothing.
	recs, err := Parse(strings.NewReader(lloydsPayRow+lloydsEarnRow), LloydsParser{}, Options{HeaderLines: 1})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = Parse(strings.NewReader(lloydsPayRow+lloydsEarnRow), LloydsParser{}, Options{HeaderLines: 2})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Tickets", recs[0].Description)
}

func TestParse_SkipsBlankRows(t *testing.T) {
	input := "Transaction Date,Transaction Type,Sort Code,Account Number,Transaction Description,Debit Amount,Credit Amount,Balance\n" +
		"\n" +
		"25/12/2011,DEB,'00-00-00,0000000,Christmas presents,134.3,,200\n" +
		"   \n" +
		",,,,,,,\n" +
		"06/01/2012,TFR,'00-00-00,0000000,Tickets,,134.3,200\n\n"
	recs, err := Parse(strings.NewReader(input), LloydsParser{}, Options{HeaderLines: 1})
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestParse_StripsByteOrderMark(t *testing.T) {
	input := "\ufeff25/12/2011,DEB,'00-00-00,0000000,Christmas presents,134.3,,200\n"
	recs, err := Parse(strings.NewReader(input), LloydsParser{}, Options{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, model.Date(2011, 12, 25), recs[0].Date)
}

func TestParse_BadRowReportsLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		line    int
		message string
	}{
		{"bad date", "header\n25/12/2011,DEB,'0,0,ok,1,,2\n31/31/2011,DEB,'0,0,bad,1,,2\n", 3, "parsing date"},
		{"bad amount", "header\n\n25/12/2011,DEB,'0,0,bad,abc,,2\n", 3, "debit"},
		{"no amount", "header\n25/12/2011,DEB,'0,0,bad,,,2\n", 2, "neither debit nor credit"},
		{"short row", "header\n25/12/2011,DEB,'0\n", 2, "expected 8 fields"},
		{"bad balance", "header\n25/12/2011,DEB,'0,0,bad,1,,x\n", 2, "balance"},
		{"bad quoting", "header\n25/12/2011,DEB,\"unterminated\n", 2, "quote"},
		{"empty description", "header\n25/12/2011,DEB,'0,0,ok,1,,2\n26/12/2011,DEB,'0,0,,1,,2\n", 3, "no description"},
		{"blank description", "header\n25/12/2011,DEB,'0,0,   ,1,,2\n", 2, "no description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := Parse(strings.NewReader(tt.input), LloydsParser{}, Options{HeaderLines: 1})
			require.Error(t, err)
			assert.Nil(t, recs, "no partial result")

			var rowErr *RowParseError
			require.True(t, errors.As(err, &rowErr))
			assert.Equal(t, tt.line, rowErr.Line)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParse_HeaderQuotingIsIgnored(t *testing.T) {
	input := "Statement for \"Tyrion's account\n" +
		"Transaction Date,Transaction Type,Sort Code,Account Number,Transaction Description,Debit Amount,Credit Amount,Balance\n" +
		"25/12/2011,DEB,'00-00-00,0000000,Christmas presents,134.3,,200\n" +
		"06/01/2012,TFR,'00-00-00,0000000,Tickets,,134.3,200\n"
	recs, err := Parse(strings.NewReader(input), LloydsParser{}, Options{HeaderLines: 2})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Christmas presents", recs[0].Description)

	_, err = Parse(strings.NewReader(input+"07/01/2012,TFR,'0,0,,,1,2\n"), LloydsParser{}, Options{HeaderLines: 2})
	var rowErr *RowParseError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 5, rowErr.Line)
}

func TestParse_FewerLinesThanHeader(t *testing.T) {
	recs, err := Parse(strings.NewReader("only one line"), LloydsParser{}, Options{HeaderLines: 3})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestParse_NegativeHeaderLines(t *testing.T) {
	_, err := Parse(strings.NewReader(lloydsPayRow), LloydsParser{}, Options{HeaderLines: -1})
	assert.Error(t, err)
}

func TestParse_LloydsStatementFile(t *testing.T) {
	f, err := os.Open("../../testdata/lloyds_statement.csv")
	require.NoError(t, err)
	defer f.Close()

	recs, err := ParseEntity(f, model.EntityLloyds, Options{HeaderLines: 1, ReverseOrder: true})
	require.NoError(t, err)
	require.Len(t, recs, 23)

	// Oldest first after reversing the newest-first export.
	assert.Equal(t, "Christmas presents", recs[0].Description)
	assert.Equal(t, "-134.30", recs[0].Amount.StringFixed(2))
	assert.Equal(t, "205.70", recs[0].Balance.Decimal.StringFixed(2))
	assert.Equal(t, "30-94-57 01234567", recs[0].AccountNumber)

	last := recs[22]
	assert.Equal(t, "Salary February", last.Description)
	assert.Equal(t, model.Date(2012, 2, 29), last.Date)
	assert.Equal(t, "2310.60", last.Balance.Decimal.StringFixed(2))
}

func TestChaseParser_File(t *testing.T) {
	data, err := os.ReadFile("../../testdata/chase_checking.csv")
	require.NoError(t, err)

	recs, err := Parse(strings.NewReader(string(data)), ChaseParser{}, Options{HeaderLines: 1})
	require.NoError(t, err)
	require.Len(t, recs, 6)

	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", recs[0].Description)
	assert.Equal(t, "-4.00", recs[0].Amount.StringFixed(2))
	assert.Equal(t, model.Date(2025, 1, 3), recs[0].Date)

	assert.Equal(t, "AWS, AMAZON WEB SERVICES", recs[1].Description, "quoted comma")

	assert.Equal(t, "ACME CONSULTING INVOICE 1042", recs[3].Description)
	assert.Equal(t, "3500.00", recs[3].Amount.StringFixed(2))
	assert.Equal(t, "8458.43", recs[3].Balance.Decimal.StringFixed(2))
	assert.Empty(t, recs[3].AccountNumber)
}

func TestChaseParser_BadRows(t *testing.T) {
	header := "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n"

	_, err := Parse(strings.NewReader(header+"DEBIT,NOTADATE,desc,-4.00,ACH_DEBIT,100.00,\n"), ChaseParser{}, Options{HeaderLines: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing date")

	_, err = Parse(strings.NewReader(header+"DEBIT,01/03/2025,desc,NOTANUMBER,ACH_DEBIT,100.00,\n"), ChaseParser{}, Options{HeaderLines: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing amount")
}

func TestChaseParser_EmptyDescription(t *testing.T) {
	input := "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n" +
		"DEBIT,01/03/2025,,-12.00,ACH_DEBIT,100.00,\n"
	_, err := Parse(strings.NewReader(input), ChaseParser{}, Options{HeaderLines: 1})
	var rowErr *RowParseError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 2, rowErr.Line)
	assert.ErrorIs(t, err, errNoDescription)
}

func TestChaseParser_HeaderOnly(t *testing.T) {
	recs, err := Parse(strings.NewReader("Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n"), ChaseParser{}, Options{HeaderLines: 1})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestForEntity(t *testing.T) {
	for _, e := range model.Entities() {
		p, err := ForEntity(e)
		require.NoError(t, err, "entity %s", e)
		assert.NotNil(t, p)
	}

	p, err := ForEntity(model.EntityHalifax)
	require.NoError(t, err)
	assert.IsType(t, LloydsParser{}, p)

	_, err = ForEntity(model.Entity("iron bank"))
	assert.Error(t, err)
}
