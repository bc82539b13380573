package report

import (
	"fmt"
	"time"

	"github.com/casterly-dev/casterly/internal/model"
)

// MonthRange returns the first and last day of a calendar month.
func MonthRange(year, month int) (from, to time.Time, err error) {
	if err := checkYear(year); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("month %d out of range 1-12", month)
	}
	from = model.Date(year, time.Month(month), 1)
	return from, from.AddDate(0, 1, -1), nil
}

// WeeksInYear returns the number of ISO weeks in year (52 or 53).
func WeeksInYear(year int) int {
	_, w := model.Date(year, time.December, 28).ISOWeek()
	return w
}

// WeekRange returns the Monday and Sunday of an ISO week.
func WeekRange(year, week int) (from, to time.Time, err error) {
	if err := checkYear(year); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if n := WeeksInYear(year); week < 1 || week > n {
		return time.Time{}, time.Time{}, fmt.Errorf("week %d out of range 1-%d for %d", week, n, year)
	}
	// Week 1 is the week containing January 4th.
	jan4 := model.Date(year, time.January, 4)
	sinceMonday := (int(jan4.Weekday()) + 6) % 7
	from = jan4.AddDate(0, 0, -sinceMonday+7*(week-1))
	return from, from.AddDate(0, 0, 6), nil
}

func checkYear(year int) error {
	if year < 1 || year > 9999 {
		return fmt.Errorf("year %d out of range", year)
	}
	return nil
}
