package mlol

import (
	"fmt"
	"strings"
	"time"
)

// BookStatus is a bit set of the states a catalogue entry can be in for the
// logged-in account. A book page can carry more than one flag at once, e.g.
// Borrowed plus Reserved when every copy is out and the account holds a
// reservation.
type BookStatus uint8

const (
	// StatusNotAvailable marks a book the account's library has no licence for.
	StatusNotAvailable BookStatus = 1 << iota
	// StatusAvailable marks a book with a free copy ready to borrow.
	StatusAvailable
	// StatusBorrowedByMe marks a book on loan to this account.
	StatusBorrowedByMe
	// StatusReserved marks a book this account holds a reservation for.
	StatusReserved
	// StatusBorrowed marks a book whose copies are all on loan to other patrons.
	StatusBorrowed
)

// Has reports whether the status set contains the given flag.
func (s BookStatus) Has(flag BookStatus) bool {
	return s&flag != 0
}

// String renders the set as a "|"-joined list of flag names.
func (s BookStatus) String() string {
	if s == 0 {
		return "unknown"
	}
	names := []struct {
		flag BookStatus
		name string
	}{
		{StatusAvailable, "available"},
		{StatusBorrowed, "borrowed"},
		{StatusBorrowedByMe, "borrowed-by-me"},
		{StatusReserved, "reserved"},
		{StatusNotAvailable, "not-available"},
	}
	var parts []string
	for _, n := range names {
		if s.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Author is a catalogue author reference.
type Author struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Publisher is a catalogue publisher reference.
type Publisher struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Topic is a catalogue subject keyword reference.
type Topic struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Book holds the fields scraped from a catalogue entry. Search results fill
// only ID, Title, Authors, Cover and URL; the book detail page fills the rest.
type Book struct {
	ID              int        `json:"id"`
	Title           string     `json:"title"`
	Authors         []Author   `json:"authors,omitempty"`
	Cover           string     `json:"cover,omitempty"`
	URL             string     `json:"url,omitempty"`
	Format          string     `json:"format,omitempty"`
	Publisher       *Publisher `json:"publisher,omitempty"`
	PublicationDate time.Time  `json:"publicationDate,omitempty"`
	Description     string     `json:"description,omitempty"`
	ISBN            []string   `json:"isbn,omitempty"`
	Language        string     `json:"language,omitempty"`
	Topics          []Topic    `json:"topics,omitempty"`
	Status          BookStatus `json:"status"`
	Favourite       bool       `json:"favourite"`
}

// AuthorNames renders the author list as a comma-separated string.
func (b *Book) AuthorNames() string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

func (b *Book) String() string {
	return fmt.Sprintf("[%s] %s", b.AuthorNames(), b.Title)
}

// Loan is one entry of the account's loan listings. The site renders dates as
// dd/mm/yyyy.
type Loan struct {
	Title   string    `json:"title"`
	Authors string    `json:"authors"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Reservation is one entry of the account's reservation listing, with the
// queue details revealed by the per-entry position button.
type Reservation struct {
	Title           string `json:"title"`
	Authors         string `json:"authors"`
	QueuePosition   int    `json:"queuePosition"`
	AvailableCopies int    `json:"availableCopies"`
}

// Usage is a used/limit pair for one of the site-imposed quotas.
type Usage struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Available int `json:"available"`
}

// Report summarizes the account's quota usage for one calendar month.
type Report struct {
	Year         int           `json:"year"`
	Month        time.Month    `json:"month"`
	Loans        Usage         `json:"loans"`
	LoanList     []Loan        `json:"loanList"`
	Reservations Usage         `json:"reservations"`
	ReserveList  []Reservation `json:"reservationList"`
}

// AvailabilityWindow is the estimated date range in which a reservation
// should convert into a loan.
type AvailabilityWindow struct {
	Best  time.Time `json:"best"`
	Worst time.Time `json:"worst"`
}
