package runner

import (
	"fmt"

	"github.com/bibliotech/mlol/pkg/mlol"
)

// Decide picks the action for a book from its status flags and the room left
// under both caps. Cap exhaustion is a normal skip, never an error. The
// checks are ordered so that books this account already holds or queues for
// win over whatever else the status says.
func Decide(status mlol.BookStatus, loansUsed, reservationsUsed, maxMonthly, maxConcurrent int) (Action, string) {
	switch {
	case status.Has(mlol.StatusBorrowedByMe):
		return ActionSkip, "already on loan to this account"
	case status.Has(mlol.StatusReserved):
		return ActionSkip, "already reserved by this account"
	case status.Has(mlol.StatusNotAvailable):
		return ActionSkip, "not available for this library"
	case status.Has(mlol.StatusAvailable):
		if loansUsed >= maxMonthly {
			return ActionSkip, fmt.Sprintf("monthly loan cap reached (%d/%d)", loansUsed, maxMonthly)
		}
		return ActionBorrow, "available"
	case status.Has(mlol.StatusBorrowed):
		if reservationsUsed >= maxConcurrent {
			return ActionSkip, fmt.Sprintf("reservation cap reached (%d/%d)", reservationsUsed, maxConcurrent)
		}
		return ActionReserve, "borrowed by another patron"
	default:
		return ActionSkip, "status unknown"
	}
}
