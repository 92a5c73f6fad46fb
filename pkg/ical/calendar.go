// Package ical renders the account's lending schedule as an iCalendar feed:
// an all-day event for every loan expiry and a spanning event for every
// reservation whose availability can be estimated.
package ical

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/bibliotech/mlol/pkg/mlol"
)

// dateFormat is how event dates are rendered in summaries and IDs.
const dateFormat = "2006-01-02"

// ReservationWindow pairs a pending reservation with its estimated
// availability window.
type ReservationWindow struct {
	Reservation mlol.Reservation
	Window      mlol.AvailabilityWindow
}

// BuildCalendar assembles the schedule feed. Event IDs are derived from the
// event content, so rebuilding an unchanged schedule yields an identical
// calendar and feed consumers can sync without duplicates. now is only used
// as the DTSTAMP of the generated events.
func BuildCalendar(loans []mlol.Loan, windows []ReservationWindow, now time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	for _, loan := range loans {
		summary := fmt.Sprintf("Loan expires: %s", loan.Title)
		start := loan.End
		end := loan.End.AddDate(0, 0, 1)

		event := cal.AddEvent(eventID(summary, start, end))
		event.SetDtStampTime(now)
		event.SetAllDayStartAt(start)
		event.SetAllDayEndAt(end)
		event.SetSummary(summary)
		event.SetDescription(fmt.Sprintf("%s. On loan since %s.",
			loan.Authors, loan.Start.Format(dateFormat)))
	}

	for _, w := range windows {
		summary := fmt.Sprintf("Reservation may become available: %s", w.Reservation.Title)
		start := w.Window.Best
		// DTEND is exclusive, so the event runs through the worst day.
		end := w.Window.Worst.AddDate(0, 0, 1)

		event := cal.AddEvent(eventID(summary, start, end))
		event.SetDtStampTime(now)
		event.SetAllDayStartAt(start)
		event.SetAllDayEndAt(end)
		event.SetSummary(summary)
		event.SetDescription(fmt.Sprintf("%s. Queue position %d with %d available copies.",
			w.Reservation.Authors, w.Reservation.QueuePosition, w.Reservation.AvailableCopies))
	}

	return cal
}

// eventID derives a stable identifier from the event content.
func eventID(summary string, start, end time.Time) string {
	hash := md5.New()
	hash.Write([]byte(summary + start.Format(dateFormat) + end.Format(dateFormat)))
	return hex.EncodeToString(hash.Sum(nil))
}
