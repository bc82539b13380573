// Package statement turns bank CSV exports into normalized records.
package statement

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one normalized statement row.
type Record struct {
	Date          time.Time
	Description   string
	Amount        decimal.Decimal     // negative = expense, positive = earning
	Balance       decimal.NullDecimal // running balance reported by the bank, if any
	AccountNumber string              // as printed by the bank, if any
}

// RowParser translates the fields of one CSV row for a specific bank layout.
type RowParser interface {
	ParseRow(fields []string) (Record, error)
}

// Options controls how a statement is tokenized.
type Options struct {
	// HeaderLines physical lines at the top of the file are skipped unconditionally.
	HeaderLines int
	// ReverseOrder reverses the parsed records, for exports listed newest first.
	ReverseOrder bool
}

// RowParseError reports a row that could not be parsed. Line is 1-based.
type RowParseError struct {
	Line int
	Err  error
}

func (e *RowParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowParseError) Unwrap() error { return e.Err }

const utf8BOM = "\ufeff"

var errNoDescription = errors.New("row has no description")

// Parse reads a comma-delimited, double-quote-quoted statement and applies p to
// every non-blank row past the header. Header lines are dropped before
// tokenizing. Any bad row aborts the whole parse.
func Parse(r io.Reader, p RowParser, opts Options) ([]Record, error) {
	if opts.HeaderLines < 0 {
		return nil, fmt.Errorf("header lines must not be negative, got %d", opts.HeaderLines)
	}

	br := bufio.NewReader(r)
	for range opts.HeaderLines {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, fmt.Errorf("reading statement header: %w", err)
		}
	}
	offset := opts.HeaderLines

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	var records []Record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &RowParseError{Line: perr.StartLine + offset, Err: perr.Err}
			}
			return nil, fmt.Errorf("reading statement: %w", err)
		}

		line, _ := cr.FieldPos(0)
		line += offset
		if line == 1 {
			fields[0] = strings.TrimPrefix(fields[0], utf8BOM)
		}
		if isBlank(fields) {
			continue
		}

		rec, err := p.ParseRow(fields)
		if err != nil {
			return nil, &RowParseError{Line: line, Err: err}
		}
		records = append(records, rec)
	}

	if opts.ReverseOrder {
		slices.Reverse(records)
	}
	return records, nil
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func checkFields(fields []string, want int) error {
	if len(fields) < want {
		return fmt.Errorf("expected %d fields, got %d", want, len(fields))
	}
	return nil
}

func description(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", errNoDescription
	}
	return s, nil
}
