package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/casterly-dev/casterly/internal/model"
)

// Header is the CSV header of a movement listing.
const Header = "id,date,account_id,description,amount,balance,category"

const (
	numFields  = 7
	colID      = 0
	colDate    = 1
	colAcctID  = 2
	colDesc    = 3
	colAmount  = 4
	colBalance = 5
	colCat     = 6
)

// WriteCSV writes a movement listing, header included. categories maps
// category IDs to names; unknown or missing categories are left blank.
func WriteCSV(w io.Writer, ms Movements, categories map[int64]string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, m := range ms {
		if err := cw.Write(MarshalMovement(m, categories)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalMovement converts a movement to a CSV row.
func MarshalMovement(m model.Movement, categories map[int64]string) []string {
	row := make([]string, numFields)
	row[colID] = strconv.FormatInt(m.ID, 10)
	row[colDate] = m.Date.Format(model.DateFormat)
	row[colAcctID] = strconv.FormatInt(m.AccountID, 10)
	row[colDesc] = m.Description
	row[colAmount] = m.Amount.StringFixed(model.CurrencyPlaces)

	if m.Balance.Valid {
		row[colBalance] = m.Balance.Decimal.StringFixed(model.CurrencyPlaces)
	}
	if m.CategoryID != nil {
		row[colCat] = categories[*m.CategoryID]
	}
	return row
}
