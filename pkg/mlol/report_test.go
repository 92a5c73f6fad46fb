package mlol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyLoans(t *testing.T) {
	history := []Loan{
		{Title: "agosto uno", Start: date(2025, time.August, 2), End: date(2025, time.August, 16)},
		{Title: "agosto due", Start: date(2025, time.August, 30), End: date(2025, time.September, 13)},
		{Title: "luglio", Start: date(2025, time.July, 5), End: date(2025, time.July, 19)},
		{Title: "anno scorso", Start: date(2024, time.August, 5), End: date(2024, time.August, 19)},
	}

	t.Run("filters by start month", func(t *testing.T) {
		loans := MonthlyLoans(history, 2025, time.August)

		require.Len(t, loans, 2)
		assert.Equal(t, "agosto uno", loans[0].Title)
		assert.Equal(t, "agosto due", loans[1].Title)
	})

	t.Run("loan ending next month still counts against its start month", func(t *testing.T) {
		loans := MonthlyLoans(history, 2025, time.September)
		assert.Empty(t, loans)
	})

	t.Run("same month of another year does not count", func(t *testing.T) {
		loans := MonthlyLoans(history, 2024, time.August)
		require.Len(t, loans, 1)
		assert.Equal(t, "anno scorso", loans[0].Title)
	})

	t.Run("empty history", func(t *testing.T) {
		assert.Empty(t, MonthlyLoans(nil, 2025, time.August))
	})
}

func TestBuildReport(t *testing.T) {
	history := []Loan{
		{Title: "agosto uno", Start: date(2025, time.August, 2)},
		{Title: "agosto due", Start: date(2025, time.August, 10)},
		{Title: "luglio", Start: date(2025, time.July, 5)},
	}
	reservations := []Reservation{
		{Title: "in coda", QueuePosition: 3, AvailableCopies: 1},
	}
	now := date(2025, time.August, 24)

	t.Run("usage against limits", func(t *testing.T) {
		report := BuildReport(history, reservations, now, 4, 2)

		assert.Equal(t, 2025, report.Year)
		assert.Equal(t, time.August, report.Month)
		assert.Equal(t, Usage{Used: 2, Limit: 4, Available: 2}, report.Loans)
		assert.Equal(t, Usage{Used: 1, Limit: 2, Available: 1}, report.Reservations)
		require.Len(t, report.LoanList, 2)
		assert.Equal(t, reservations, report.ReserveList)
	})

	t.Run("usage above the limit goes negative", func(t *testing.T) {
		report := BuildReport(history, reservations, now, 1, 0)

		assert.Equal(t, Usage{Used: 2, Limit: 1, Available: -1}, report.Loans)
		assert.Equal(t, Usage{Used: 1, Limit: 0, Available: -1}, report.Reservations)
	})

	t.Run("zero caps", func(t *testing.T) {
		report := BuildReport(nil, nil, now, 0, 0)

		assert.Equal(t, Usage{Used: 0, Limit: 0, Available: 0}, report.Loans)
		assert.Equal(t, Usage{Used: 0, Limit: 0, Available: 0}, report.Reservations)
	})
}
