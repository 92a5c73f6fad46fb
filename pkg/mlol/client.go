package mlol

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// Interaction selectors. Unlike the extraction selectors these are only ever
// driven through the live browser session.
const (
	selCookieAccept  = `a[onclick="acceptCookies()"]`
	selUsernameField = "#lusername"
	selPasswordField = "#lpassword"
	selLoginSubmit   = "#btnLogin > input"
	selModalDismiss  = `.modal-dialog button[data-dismiss="modal"]`

	selLoanTab        = `a[href="#mlolloan"]`
	selLoanHistoryTab = `a[href="#mlolloanhistory"]`
	selReservationTab = `a[href="#mlolreservation"]`
	selQueueButton    = `#mlolreservation div[id^="divPos"] .btn`
)

// Site paths, relative to the library's portal base URL.
const (
	pathResources = "/user/risorse.aspx"
	pathSearch    = "/media/ricerca.aspx"
	pathBook      = "/media/scheda.aspx"
)

// Action captions the client clicks on a book page. They double as status
// markers in actionLabels.
const (
	actionBorrow  = "SCARICA EBOOK"
	actionReserve = "PRENOTA"
)

// searchTypeEBook is the catalogue type filter for ebooks.
const searchTypeEBook = "310"

// Driver is the browser session the client drives. Lookups that "wait"
// block until the element appears or the session times out; the rest
// inspect the DOM as it currently stands.
type Driver interface {
	// Navigate opens the URL and waits for the page to finish loading.
	Navigate(ctx context.Context, url string) error
	// Click waits for the first match of selector and clicks it.
	Click(ctx context.Context, selector string) error
	// ClickAll clicks every current match of selector, in document order,
	// and reports how many it clicked. No matches is not an error.
	ClickAll(ctx context.Context, selector string) (int, error)
	// ClickNth clicks the current match of selector at the given index.
	ClickNth(ctx context.Context, selector string, index int) error
	// Fill waits for the first match of selector and types value into it.
	Fill(ctx context.Context, selector, value string) error
	// Texts returns the visible text of every current match of selector.
	Texts(ctx context.Context, selector string) ([]string, error)
	// HTML returns the serialized DOM of the current page.
	HTML(ctx context.Context) (string, error)
	// Exists reports whether selector matches anything right now.
	Exists(ctx context.Context, selector string) (bool, error)
}

// Credentials identify a library account.
type Credentials struct {
	Username string
	Password string
}

// Client drives an MLOL portal through a browser session. Methods are
// synchronous and must be called from a single goroutine; the underlying
// browser has exactly one page and no session state beyond its cookies.
type Client struct {
	driver Driver
	base   string
}

// NewClient builds a client for the portal at baseURL, e.g.
// "https://milano.medialibrary.it". A trailing slash is tolerated.
func NewClient(driver Driver, baseURL string) *Client {
	return &Client{
		driver: driver,
		base:   strings.TrimRight(baseURL, "/"),
	}
}

// Login authenticates the session. It returns *AuthenticationError when the
// login form is not where it should be or the site rejects the credentials.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	log.Debug().Str("url", c.base).Str("username", creds.Username).Msg("logging in")

	if err := c.driver.Navigate(ctx, c.base); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}

	// The cookie banner only shows up on a fresh browser profile.
	banner, err := c.driver.Exists(ctx, selCookieAccept)
	if err != nil {
		return fmt.Errorf("check cookie banner: %w", err)
	}
	if banner {
		if err := c.driver.Click(ctx, selCookieAccept); err != nil {
			return fmt.Errorf("accept cookies: %w", err)
		}
	}

	for _, selector := range []string{selUsernameField, selPasswordField, selLoginSubmit} {
		ok, err := c.driver.Exists(ctx, selector)
		if err != nil {
			return fmt.Errorf("inspect login form: %w", err)
		}
		if !ok {
			return &AuthenticationError{
				Reason: fmt.Sprintf("login form not recognized, missing %q", selector),
			}
		}
	}

	if err := c.driver.Fill(ctx, selUsernameField, creds.Username); err != nil {
		return fmt.Errorf("fill username: %w", err)
	}
	if err := c.driver.Fill(ctx, selPasswordField, creds.Password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	if err := c.driver.Click(ctx, selLoginSubmit); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}

	if err := c.dismissDialogs(ctx); err != nil {
		return err
	}

	// A successful login leaves the account page; the form lingering means
	// the site bounced us back.
	rejected, err := c.driver.Exists(ctx, selUsernameField)
	if err != nil {
		return fmt.Errorf("verify login: %w", err)
	}
	if rejected {
		return &AuthenticationError{Reason: "credentials rejected"}
	}

	log.Info().Str("username", creds.Username).Msg("authenticated")
	return nil
}

// ActiveLoans lists the loans currently running on the account.
func (c *Client) ActiveLoans(ctx context.Context) ([]Loan, error) {
	loans, err := c.loanListing(ctx, selLoanTab, selLoanSection, "loans page")
	if err != nil {
		return nil, err
	}
	log.Debug().Int("loans", len(loans)).Msg("active loans listed")
	return loans, nil
}

// LoanHistory lists every loan the account ever made, newest first as the
// site renders them.
func (c *Client) LoanHistory(ctx context.Context) ([]Loan, error) {
	loans, err := c.loanListing(ctx, selLoanHistoryTab, selLoanHistorySection, "loan history page")
	if err != nil {
		return nil, err
	}
	log.Debug().Int("loans", len(loans)).Msg("loan history listed")
	return loans, nil
}

func (c *Client) loanListing(ctx context.Context, tab, section, page string) ([]Loan, error) {
	if err := c.driver.Navigate(ctx, c.base+pathResources+section); err != nil {
		return nil, fmt.Errorf("open account page: %w", err)
	}
	if err := c.driver.Click(ctx, tab); err != nil {
		return nil, scrapeErrWrap(page, tab, err)
	}
	html, err := c.driver.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", page, err)
	}
	return parseLoans(html, section, page)
}

// Reservations lists the account's pending reservations with their queue
// position and the number of copies the library licenses. Entries whose
// queue details cannot be read are skipped, not fatal.
func (c *Client) Reservations(ctx context.Context) ([]Reservation, error) {
	const page = "reservations page"

	if err := c.driver.Navigate(ctx, c.base+pathResources+selReservationSection); err != nil {
		return nil, fmt.Errorf("open account page: %w", err)
	}
	if err := c.driver.Click(ctx, selReservationTab); err != nil {
		return nil, scrapeErrWrap(page, selReservationTab, err)
	}

	// Queue position and copy count stay hidden until each entry's
	// position button is clicked.
	if _, err := c.driver.ClickAll(ctx, selQueueButton); err != nil {
		return nil, scrapeErrWrap(page, selQueueButton, err)
	}

	html, err := c.driver.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", page, err)
	}
	reservations, skipped, err := parseReservations(html, page)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("unreadable reservation entries skipped")
	}
	log.Debug().Int("reservations", len(reservations)).Msg("reservations listed")
	return reservations, nil
}

// SearchBooks runs an ebook catalogue search and walks every results page.
// It returns the total match count the site reports alongside the books.
func (c *Client) SearchBooks(ctx context.Context, query string) (int, []Book, error) {
	const page = "search results page"

	var (
		total int
		books []Book
	)
	for number := 1; ; number++ {
		target := fmt.Sprintf("%s%s?keywords=%s&seltip=%s&page=%d",
			c.base, pathSearch, url.QueryEscape(query), searchTypeEBook, number)
		if err := c.driver.Navigate(ctx, target); err != nil {
			return 0, nil, fmt.Errorf("open search page %d: %w", number, err)
		}
		html, err := c.driver.HTML(ctx)
		if err != nil {
			return 0, nil, fmt.Errorf("read search page %d: %w", number, err)
		}
		result, err := parseSearchPage(html, c.base, page)
		if err != nil {
			return 0, nil, err
		}
		total = result.Total
		books = append(books, result.Books...)
		if !result.HasNext {
			break
		}
	}

	log.Debug().Str("query", query).Int("total", total).Int("fetched", len(books)).Msg("search finished")
	return total, books, nil
}

// BookDetails fetches the full record of a single book, including its
// current lending status as seen by the logged-in account.
func (c *Client) BookDetails(ctx context.Context, id int) (*Book, error) {
	if id <= 0 {
		return nil, fmt.Errorf("book id must be positive, got %d", id)
	}

	target := c.bookURL(id)
	if err := c.driver.Navigate(ctx, target); err != nil {
		return nil, fmt.Errorf("open book page: %w", err)
	}
	html, err := c.driver.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read book page: %w", err)
	}
	book, err := parseBookDetails(html, id, c.base, "book page")
	if err != nil {
		return nil, err
	}
	book.URL = target

	log.Debug().Int("bookId", id).Str("title", book.Title).Stringer("status", book.Status).Msg("book details fetched")
	return book, nil
}

// Borrow takes out a loan on the book. The book page must offer the download
// action, which it only does while the title is available and the account is
// under its loan limit.
func (c *Client) Borrow(ctx context.Context, id int) error {
	return c.bookAction(ctx, id, actionBorrow)
}

// Reserve queues a reservation on the book. The book page must offer the
// reservation action, which it only does while every copy is out on loan.
func (c *Client) Reserve(ctx context.Context, id int) error {
	return c.bookAction(ctx, id, actionReserve)
}

func (c *Client) bookAction(ctx context.Context, id int, label string) error {
	if id <= 0 {
		return fmt.Errorf("book id must be positive, got %d", id)
	}

	if err := c.driver.Navigate(ctx, c.bookURL(id)); err != nil {
		return fmt.Errorf("open book page: %w", err)
	}
	labels, err := c.driver.Texts(ctx, selBookActions)
	if err != nil {
		return scrapeErrWrap("book page", selBookActions, err)
	}

	target := -1
	for i, text := range labels {
		if normalizeLabel(text) == label {
			target = i
			break
		}
	}
	if target < 0 {
		return fmt.Errorf("book %d does not offer the %q action", id, label)
	}

	if err := c.driver.ClickNth(ctx, selBookActions, target); err != nil {
		return fmt.Errorf("click %q: %w", label, err)
	}
	if err := c.dismissDialogs(ctx); err != nil {
		return err
	}

	log.Info().Int("bookId", id).Str("action", label).Msg("book action submitted")
	return nil
}

// dismissDialogs closes whatever confirmation dialogs the last interaction
// popped up. The site stacks them, so every dismiss button gets clicked.
func (c *Client) dismissDialogs(ctx context.Context) error {
	n, err := c.driver.ClickAll(ctx, selModalDismiss)
	if err != nil {
		return fmt.Errorf("dismiss dialogs: %w", err)
	}
	if n > 0 {
		log.Debug().Int("dialogs", n).Msg("dialogs dismissed")
	}
	return nil
}

func (c *Client) bookURL(id int) string {
	return fmt.Sprintf("%s%s?id=%d", c.base, pathBook, id)
}
