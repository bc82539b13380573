package statement

import (
	"fmt"
	"time"

	"github.com/casterly-dev/casterly/internal/model"
)

// ChaseParser parses Chase checking CSV exports:
//
//	Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
type ChaseParser struct{}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
	chaseColBalance = 5
)

// ParseRow implements RowParser.
func (ChaseParser) ParseRow(fields []string) (Record, error) {
	if err := checkFields(fields, chaseNumFields); err != nil {
		return Record{}, err
	}

	date, err := time.Parse(chaseDateFormat, fields[chaseColDate])
	if err != nil {
		return Record{}, fmt.Errorf("parsing date %q: %w", fields[chaseColDate], err)
	}

	amount, err := model.ParseCurrency(fields[chaseColAmount])
	if err != nil {
		return Record{}, err
	}

	balance, err := optionalAmount(fields[chaseColBalance])
	if err != nil {
		return Record{}, fmt.Errorf("balance: %w", err)
	}

	desc, err := description(fields[chaseColDesc])
	if err != nil {
		return Record{}, err
	}

	return Record{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Balance:     balance,
	}, nil
}
