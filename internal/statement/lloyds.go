package statement

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/casterly-dev/casterly/internal/model"
)

// LloydsParser parses Lloyds (and Halifax, which shares the layout) CSV exports:
//
//	Transaction Date,Transaction Type,Sort Code,Account Number,Transaction Description,Debit Amount,Credit Amount,Balance
type LloydsParser struct{}

const (
	lloydsDateFormat  = "2/1/2006"
	lloydsNumFields   = 8
	lloydsColDate     = 0
	lloydsColSortCode = 2
	lloydsColAccount  = 3
	lloydsColDesc     = 4
	lloydsColDebit    = 5
	lloydsColCredit   = 6
	lloydsColBalance  = 7
)

var errNoAmount = errors.New("row has neither debit nor credit amount")

// ParseRow implements RowParser.
func (LloydsParser) ParseRow(fields []string) (Record, error) {
	if err := checkFields(fields, lloydsNumFields); err != nil {
		return Record{}, err
	}

	date, err := time.Parse(lloydsDateFormat, strings.TrimSpace(fields[lloydsColDate]))
	if err != nil {
		return Record{}, fmt.Errorf("parsing date %q: %w", fields[lloydsColDate], err)
	}

	// A credit wins over a debit when a bank fills in both.
	var amount decimal.Decimal
	debit := strings.TrimSpace(fields[lloydsColDebit])
	credit := strings.TrimSpace(fields[lloydsColCredit])
	switch {
	case credit != "":
		if amount, err = model.ParseCurrency(credit); err != nil {
			return Record{}, fmt.Errorf("credit: %w", err)
		}
	case debit != "":
		if amount, err = model.ParseCurrency(debit); err != nil {
			return Record{}, fmt.Errorf("debit: %w", err)
		}
		amount = amount.Neg()
	default:
		return Record{}, errNoAmount
	}

	balance, err := optionalAmount(fields[lloydsColBalance])
	if err != nil {
		return Record{}, fmt.Errorf("balance: %w", err)
	}

	desc, err := description(fields[lloydsColDesc])
	if err != nil {
		return Record{}, err
	}

	return Record{
		Date:          date,
		Description:   desc,
		Amount:        amount,
		Balance:       balance,
		AccountNumber: strings.ReplaceAll(fields[lloydsColSortCode], "'", "") + " " + fields[lloydsColAccount],
	}, nil
}

func optionalAmount(s string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := model.ParseCurrency(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
