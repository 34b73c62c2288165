// Package period computes deduplication bucket keys. Keys depend only on
// the calendar date, never the time of day, so repeated cron invocations
// within the same bucket always agree.
package period

import (
	"fmt"
	"time"

	"github.com/copperline/crm/internal/alert/domain"
)

// Key returns the dedup bucket for the cadence at the given instant.
//
//	monthly  2024-07
//	weekly   2024-W28   (ISO weeks, Monday start)
//	daily    2024-W28-D9
func Key(now time.Time, cadence domain.Cadence) string {
	now = now.UTC()
	switch cadence {
	case domain.CadenceMonthly:
		return Monthly(now)
	case domain.CadenceWeekly:
		return Weekly(now)
	case domain.CadenceDaily:
		return Daily(now)
	default:
		return Monthly(now)
	}
}

func Monthly(now time.Time) string {
	return fmt.Sprintf("%04d-%02d", now.Year(), int(now.Month()))
}

func Weekly(now time.Time) string {
	year, week := now.UTC().ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// Daily nests inside the weekly bucket so daily alerts dedup at finer
// grain than weekly ones without colliding with them.
func Daily(now time.Time) string {
	return fmt.Sprintf("%s-D%d", Weekly(now), now.UTC().Day())
}

// DaysRemainingInMonth counts the full days left after today.
func DaysRemainingInMonth(now time.Time) int {
	now = now.UTC()
	firstOfNext := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	lastDay := firstOfNext.AddDate(0, 0, -1).Day()
	return lastDay - now.Day()
}

// MonthWindow returns [first of month, first of next month).
func MonthWindow(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// WeekWindow returns [Monday 00:00, next Monday 00:00) for the current
// ISO week.
func WeekWindow(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started last Monday
	}
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -(weekday - 1))
	return monday, monday.AddDate(0, 0, 7)
}
