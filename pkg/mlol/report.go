package mlol

import "time"

// MonthlyLoans filters a loan history down to the loans started in the given
// month. A loan counts against the month it started in, regardless of when it
// ends.
func MonthlyLoans(history []Loan, year int, month time.Month) []Loan {
	var loans []Loan
	for _, loan := range history {
		if loan.Start.Year() == year && loan.Start.Month() == month {
			loans = append(loans, loan)
		}
	}
	return loans
}

// BuildReport summarizes quota usage for the month containing now: how many
// monthly loans and concurrent reservations are used, against the configured
// limits.
func BuildReport(history []Loan, reservations []Reservation, now time.Time, maxMonthlyLoans, maxConcurrentReservations int) Report {
	year, month := now.Year(), now.Month()
	monthly := MonthlyLoans(history, year, month)

	return Report{
		Year:  year,
		Month: month,
		Loans: Usage{
			Used:      len(monthly),
			Limit:     maxMonthlyLoans,
			Available: maxMonthlyLoans - len(monthly),
		},
		LoanList: monthly,
		Reservations: Usage{
			Used:      len(reservations),
			Limit:     maxConcurrentReservations,
			Available: maxConcurrentReservations - len(reservations),
		},
		ReserveList: reservations,
	}
}
