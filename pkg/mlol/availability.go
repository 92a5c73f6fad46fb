package mlol

import "time"

// EstimateAvailability projects the date range in which a reservation should
// convert into a loan, assuming every patron ahead in the queue keeps their
// copy for the full loan duration.
//
// The queue drains in rounds of availableCopies loans each. In the best case
// all copies free up tomorrow and the wait is the full rounds ahead of us; in
// the worst case all copies were taken today and one extra round runs first.
// Reservations with no available copies recorded cannot be estimated and
// return ok = false.
func EstimateAvailability(r Reservation, today time.Time, loanDurationDays int) (window AvailabilityWindow, ok bool) {
	if r.AvailableCopies <= 0 || loanDurationDays <= 0 {
		return AvailabilityWindow{}, false
	}

	peopleAhead := r.QueuePosition - 1
	if peopleAhead < 0 {
		peopleAhead = 0
	}
	rounds := peopleAhead / r.AvailableCopies

	tomorrow := today.AddDate(0, 0, 1)
	return AvailabilityWindow{
		Best:  tomorrow.AddDate(0, 0, 1+rounds*loanDurationDays),
		Worst: tomorrow.AddDate(0, 0, (rounds+1)*loanDurationDays),
	}, true
}
