// Package runner executes one linear lending session: snapshot the account
// state, then walk the wishlist deciding to borrow, reserve or skip each
// book under the configured caps.
package runner

import (
	"context"
	"time"

	"github.com/bibliotech/mlol/pkg/mlol"
)

// SiteClient is the slice of the site client the runner drives. The
// concrete implementation is mlol.Client over a live browser session.
type SiteClient interface {
	LoanHistory(ctx context.Context) ([]mlol.Loan, error)
	Reservations(ctx context.Context) ([]mlol.Reservation, error)
	BookDetails(ctx context.Context, id int) (*mlol.Book, error)
	Borrow(ctx context.Context, id int) error
	Reserve(ctx context.Context, id int) error
}

// Action is what the runner decided to do with a book
type Action string

const (
	ActionBorrow  Action = "borrow"
	ActionReserve Action = "reserve"
	ActionSkip    Action = "skip"
)

// Outcome records the decision and result for one book
type Outcome struct {
	BookID int    `json:"bookId"`
	Title  string `json:"title"`
	Action Action `json:"action"`
	Reason string `json:"reason"`
}

// Result is the record of one completed run
type Result struct {
	RunID    string      `json:"runId"`
	Started  time.Time   `json:"started"`
	Report   mlol.Report `json:"report"`
	Outcomes []Outcome   `json:"outcomes"`
}
