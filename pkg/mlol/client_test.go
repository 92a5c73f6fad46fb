package mlol

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDriver scripts the browser session: Navigate serves canned markup per
// URL, Exists answers from a per-selector queue before falling back to a
// fixed map, and every interaction is recorded for assertions.
type fakeDriver struct {
	pages       map[string]string
	current     string
	exists      map[string]bool
	existsQueue map[string][]bool
	texts       map[string][]string
	clickAllN   map[string]int

	navigated  []string
	clicked    []string
	clickedAll []string
	clickedNth []string
	filled     map[string]string
}

var _ Driver = (*fakeDriver)(nil)

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		pages:       map[string]string{},
		exists:      map[string]bool{},
		existsQueue: map[string][]bool{},
		texts:       map[string][]string{},
		clickAllN:   map[string]int{},
		filled:      map[string]string{},
	}
}

func (d *fakeDriver) Navigate(_ context.Context, url string) error {
	d.navigated = append(d.navigated, url)
	if markup, ok := d.pages[url]; ok {
		d.current = markup
	}
	return nil
}

func (d *fakeDriver) Click(_ context.Context, selector string) error {
	d.clicked = append(d.clicked, selector)
	return nil
}

func (d *fakeDriver) ClickAll(_ context.Context, selector string) (int, error) {
	d.clickedAll = append(d.clickedAll, selector)
	return d.clickAllN[selector], nil
}

func (d *fakeDriver) ClickNth(_ context.Context, selector string, index int) error {
	d.clickedNth = append(d.clickedNth, fmt.Sprintf("%s#%d", selector, index))
	return nil
}

func (d *fakeDriver) Fill(_ context.Context, selector, value string) error {
	d.filled[selector] = value
	return nil
}

func (d *fakeDriver) Texts(_ context.Context, selector string) ([]string, error) {
	return d.texts[selector], nil
}

func (d *fakeDriver) HTML(_ context.Context) (string, error) {
	return d.current, nil
}

func (d *fakeDriver) Exists(_ context.Context, selector string) (bool, error) {
	if queue := d.existsQueue[selector]; len(queue) > 0 {
		d.existsQueue[selector] = queue[1:]
		return queue[0], nil
	}
	return d.exists[selector], nil
}

func TestClientLogin(t *testing.T) {
	const base = "https://biblioteca.medialibrary.it"
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		driver := newFakeDriver()
		driver.exists[selPasswordField] = true
		driver.exists[selLoginSubmit] = true
		// Present during the form check, gone once the site logs us in.
		driver.existsQueue[selUsernameField] = []bool{true, false}

		client := NewClient(driver, base+"/")
		err := client.Login(ctx, Credentials{Username: "anna.rossi", Password: "segreta"})

		require.NoError(t, err)
		assert.Equal(t, base, driver.navigated[0], "trailing slash must be stripped from the base URL")
		assert.Equal(t, "anna.rossi", driver.filled[selUsernameField])
		assert.Equal(t, "segreta", driver.filled[selPasswordField])
		assert.Contains(t, driver.clicked, selLoginSubmit)
		assert.Contains(t, driver.clickedAll, selModalDismiss)
		assert.NotContains(t, driver.clicked, selCookieAccept)
	})

	t.Run("accepts the cookie banner when shown", func(t *testing.T) {
		driver := newFakeDriver()
		driver.exists[selCookieAccept] = true
		driver.exists[selPasswordField] = true
		driver.exists[selLoginSubmit] = true
		driver.existsQueue[selUsernameField] = []bool{true, false}

		client := NewClient(driver, base)
		err := client.Login(ctx, Credentials{Username: "anna.rossi", Password: "segreta"})

		require.NoError(t, err)
		assert.Contains(t, driver.clicked, selCookieAccept)
	})

	t.Run("unrecognized login form", func(t *testing.T) {
		driver := newFakeDriver()

		client := NewClient(driver, base)
		err := client.Login(ctx, Credentials{Username: "anna.rossi", Password: "segreta"})

		var authErr *AuthenticationError
		require.ErrorAs(t, err, &authErr)
		assert.Contains(t, authErr.Reason, "login form not recognized")
		assert.Empty(t, driver.filled, "credentials must not be typed into an unknown page")
	})

	t.Run("credentials rejected", func(t *testing.T) {
		driver := newFakeDriver()
		driver.exists[selPasswordField] = true
		driver.exists[selLoginSubmit] = true
		// The form survives the submit: the site bounced us back.
		driver.existsQueue[selUsernameField] = []bool{true, true}

		client := NewClient(driver, base)
		err := client.Login(ctx, Credentials{Username: "anna.rossi", Password: "sbagliata"})

		var authErr *AuthenticationError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "credentials rejected", authErr.Reason)
	})
}

func TestClientLoanListings(t *testing.T) {
	const base = "https://biblioteca.medialibrary.it"
	ctx := context.Background()

	t.Run("active loans", func(t *testing.T) {
		driver := newFakeDriver()
		driver.pages[base+pathResources+selLoanSection] = fixture(t, "loans.html")

		client := NewClient(driver, base)
		loans, err := client.ActiveLoans(ctx)

		require.NoError(t, err)
		assert.Len(t, loans, 2)
		assert.Contains(t, driver.clicked, selLoanTab)
	})

	t.Run("loan history", func(t *testing.T) {
		driver := newFakeDriver()
		driver.pages[base+pathResources+selLoanHistorySection] = fixture(t, "loans.html")

		client := NewClient(driver, base)
		loans, err := client.LoanHistory(ctx)

		require.NoError(t, err)
		assert.Len(t, loans, 3)
		assert.Contains(t, driver.clicked, selLoanHistoryTab)
	})
}

func TestClientReservations(t *testing.T) {
	const base = "https://biblioteca.medialibrary.it"
	ctx := context.Background()

	driver := newFakeDriver()
	driver.pages[base+pathResources+selReservationSection] = fixture(t, "reservations.html")
	driver.clickAllN[selQueueButton] = 3

	client := NewClient(driver, base)
	reservations, err := client.Reservations(ctx)

	require.NoError(t, err)
	assert.Len(t, reservations, 2, "the unrevealed entry is skipped")
	assert.Contains(t, driver.clicked, selReservationTab)
	assert.Contains(t, driver.clickedAll, selQueueButton, "queue details must be revealed before reading the page")
}

func TestClientSearchBooks(t *testing.T) {
	const base = "https://biblioteca.medialibrary.it"
	ctx := context.Background()

	t.Run("walks every results page", func(t *testing.T) {
		driver := newFakeDriver()
		driver.pages[base+"/media/ricerca.aspx?keywords=calvino&seltip=310&page=1"] = fixture(t, "search_page1.html")
		driver.pages[base+"/media/ricerca.aspx?keywords=calvino&seltip=310&page=2"] = fixture(t, "search_page2.html")

		client := NewClient(driver, base)
		total, books, err := client.SearchBooks(ctx, "calvino")

		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, books, 3)
		assert.Equal(t, 150243379, books[0].ID)
		assert.Equal(t, 150243380, books[1].ID)
		assert.Equal(t, 150243381, books[2].ID)
		assert.Len(t, driver.navigated, 2)
	})

	t.Run("escapes the query", func(t *testing.T) {
		driver := newFakeDriver()
		driver.pages[base+"/media/ricerca.aspx?keywords=guerra+e+pace&seltip=310&page=1"] = fixture(t, "search_page2.html")

		client := NewClient(driver, base)
		_, books, err := client.SearchBooks(ctx, "guerra e pace")

		require.NoError(t, err)
		assert.Len(t, books, 1)
	})
}

func TestClientBookDetails(t *testing.T) {
	const base = "https://biblioteca.medialibrary.it"
	ctx := context.Background()

	t.Run("fetches the record and fills the URL", func(t *testing.T) {
		driver := newFakeDriver()
		driver.pages[base+"/media/scheda.aspx?id=150243400"] = fixture(t, "book.html")

		client := NewClient(driver, base)
		book, err := client.BookDetails(ctx, 150243400)

		require.NoError(t, err)
		assert.Equal(t, "La luna e i falò", book.Title)
		assert.Equal(t, base+"/media/scheda.aspx?id=150243400", book.URL)
	})

	t.Run("rejects a non-positive id", func(t *testing.T) {
		client := NewClient(newFakeDriver(), base)
		_, err := client.BookDetails(ctx, 0)
		assert.Error(t, err)
	})
}

func TestClientBookActions(t *testing.T) {
	const base = "https://biblioteca.medialibrary.it"
	ctx := context.Background()

	t.Run("borrow clicks the download action", func(t *testing.T) {
		driver := newFakeDriver()
		driver.texts[selBookActions] = []string{"SCARICA EBOOK", "LEGGI ONLINE"}

		client := NewClient(driver, base)
		err := client.Borrow(ctx, 42)

		require.NoError(t, err)
		assert.Equal(t, []string{base + "/media/scheda.aspx?id=42"}, driver.navigated)
		assert.Equal(t, []string{selBookActions + "#0"}, driver.clickedNth)
		assert.Contains(t, driver.clickedAll, selModalDismiss)
	})

	t.Run("reserve clicks the reservation action", func(t *testing.T) {
		driver := newFakeDriver()
		driver.texts[selBookActions] = []string{"OCCUPATO", "PRENOTA"}

		client := NewClient(driver, base)
		err := client.Reserve(ctx, 42)

		require.NoError(t, err)
		assert.Equal(t, []string{selBookActions + "#1"}, driver.clickedNth)
	})

	t.Run("action captions are matched after trimming", func(t *testing.T) {
		driver := newFakeDriver()
		driver.texts[selBookActions] = []string{"  PRENOTA  "}

		client := NewClient(driver, base)
		err := client.Reserve(ctx, 42)

		require.NoError(t, err)
		assert.Equal(t, []string{selBookActions + "#0"}, driver.clickedNth)
	})

	t.Run("borrow on a book without the action", func(t *testing.T) {
		driver := newFakeDriver()
		driver.texts[selBookActions] = []string{"OCCUPATO", "PRENOTA"}

		client := NewClient(driver, base)
		err := client.Borrow(ctx, 42)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not offer")
		assert.Empty(t, driver.clickedNth)
	})

	t.Run("rejects a non-positive id", func(t *testing.T) {
		client := NewClient(newFakeDriver(), base)
		assert.Error(t, client.Borrow(ctx, 0))
		assert.Error(t, client.Reserve(ctx, -1))
	})
}
