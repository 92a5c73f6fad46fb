package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bibliotech/mlol/internal/config"
	"github.com/bibliotech/mlol/pkg/mlol"
)

// Runner drives one lending session against the site
type Runner struct {
	client SiteClient
	cfg    *config.Config
	now    func() time.Time
}

// NewRunner creates a runner for an authenticated site client
func NewRunner(client SiteClient, cfg *config.Config) *Runner {
	return &Runner{
		client: client,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Run executes one linear pass: load the loan history and reservation queue,
// build the usage snapshot, then decide and act on each wishlist book.
// Counters advance in-process after every successful action, so a single run
// can never overshoot either cap regardless of wishlist length. Any
// navigation or scrape failure terminates the run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	started := r.now()
	runID := uuid.New().String()
	logger := log.With().Str("runId", runID).Logger()

	history, err := r.client.LoanHistory(ctx)
	if err != nil {
		return nil, err
	}

	reservations, err := r.client.Reservations(ctx)
	if err != nil {
		return nil, err
	}

	report := mlol.BuildReport(history, reservations, started,
		r.cfg.MaxMonthlyLoans, r.cfg.MaxConcurrentReservations)

	loansUsed := report.Loans.Used
	reservationsUsed := report.Reservations.Used

	logger.Info().
		Int("loansUsed", loansUsed).
		Int("reservationsUsed", reservationsUsed).
		Int("wishlistSize", len(r.cfg.Wishlist)).
		Msg("account state loaded")

	outcomes := make([]Outcome, 0, len(r.cfg.Wishlist))
	for _, id := range r.cfg.Wishlist {
		book, err := r.client.BookDetails(ctx, id)
		if err != nil {
			return nil, err
		}

		action, reason := Decide(book.Status, loansUsed, reservationsUsed,
			r.cfg.MaxMonthlyLoans, r.cfg.MaxConcurrentReservations)

		switch action {
		case ActionBorrow:
			if err := r.client.Borrow(ctx, id); err != nil {
				return nil, err
			}
			loansUsed++
		case ActionReserve:
			if err := r.client.Reserve(ctx, id); err != nil {
				return nil, err
			}
			reservationsUsed++
		}

		logger.Info().
			Int("bookId", id).
			Str("title", book.Title).
			Str("action", string(action)).
			Str("reason", reason).
			Msg("wishlist decision")

		outcomes = append(outcomes, Outcome{
			BookID: id,
			Title:  book.Title,
			Action: action,
			Reason: reason,
		})
	}

	return &Result{
		RunID:    runID,
		Started:  started,
		Report:   report,
		Outcomes: outcomes,
	}, nil
}

// BorrowBook borrows a single book if it is available and the monthly loan
// cap leaves room; otherwise it reports why nothing was done
func (r *Runner) BorrowBook(ctx context.Context, id int) (*Outcome, error) {
	history, err := r.client.LoanHistory(ctx)
	if err != nil {
		return nil, err
	}
	now := r.now()
	used := len(mlol.MonthlyLoans(history, now.Year(), now.Month()))

	book, err := r.client.BookDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{BookID: id, Title: book.Title, Action: ActionSkip}
	switch {
	case book.Status.Has(mlol.StatusBorrowedByMe):
		outcome.Reason = "already on loan to this account"
	case !book.Status.Has(mlol.StatusAvailable):
		outcome.Reason = "not available to borrow"
	case used >= r.cfg.MaxMonthlyLoans:
		outcome.Reason = fmt.Sprintf("monthly loan cap reached (%d/%d)", used, r.cfg.MaxMonthlyLoans)
	default:
		if err := r.client.Borrow(ctx, id); err != nil {
			return nil, err
		}
		outcome.Action = ActionBorrow
		outcome.Reason = "borrowed"
	}

	return outcome, nil
}

// ReserveBook reserves a single book if it is held by another patron and the
// concurrent reservation cap leaves room; otherwise it reports why nothing
// was done
func (r *Runner) ReserveBook(ctx context.Context, id int) (*Outcome, error) {
	reservations, err := r.client.Reservations(ctx)
	if err != nil {
		return nil, err
	}
	used := len(reservations)

	book, err := r.client.BookDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{BookID: id, Title: book.Title, Action: ActionSkip}
	switch {
	case book.Status.Has(mlol.StatusReserved):
		outcome.Reason = "already reserved by this account"
	case book.Status.Has(mlol.StatusBorrowedByMe):
		outcome.Reason = "already on loan to this account"
	case book.Status.Has(mlol.StatusAvailable):
		outcome.Reason = "available now, borrow it instead"
	case !book.Status.Has(mlol.StatusBorrowed):
		outcome.Reason = "not reservable"
	case used >= r.cfg.MaxConcurrentReservations:
		outcome.Reason = fmt.Sprintf("reservation cap reached (%d/%d)", used, r.cfg.MaxConcurrentReservations)
	default:
		if err := r.client.Reserve(ctx, id); err != nil {
			return nil, err
		}
		outcome.Action = ActionReserve
		outcome.Reason = "reserved"
	}

	return outcome, nil
}
