package mlol

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Extraction selectors. These mirror the markup the site renders today and
// are brittle by nature; when the layout changes the parsers fail with a
// ScrapeError naming the selector that went missing.
const (
	selLoanSection        = "#mlolloan"
	selLoanHistorySection = "#mlolloanhistory"
	selReservationSection = "#mlolreservation"
	selListEntry          = ".bottom-buffer"
	selEntryTitle         = "h3"
	selEntryAuthors       = `span[itemprop="author"]`
	selLoanStart          = "table tr:first-of-type td:nth-child(2) b"
	selLoanEnd            = "table tr:nth-child(2) td:nth-child(2) b"
	selQueueDetails       = `div[id^="divPos"]`

	selSearchCount  = ".mlol.active span"
	selSearchResult = `.ml-book-search-result.hidden-xs [itemtype="http://schema.org/Book"]`
	selNextPage     = "#pager a.page-link.next"

	selBookRoot        = `[itemtype="http://schema.org/Book"]`
	selBookFormat      = `[itemprop="bookFormat"]`
	selBookCover       = `[itemprop="image"]`
	selBookTitle       = `[itemprop="name"]`
	selBookURL         = `[itemprop="url"]`
	selBookAuthorLink  = `[itemprop="author"] a.authorref`
	selBookPublisher   = `[itemprop="publisher"] a`
	selBookPublished   = `meta[itemprop="datePublished"]`
	selBookDescription = `[itemprop="description"]`
	selBookISBN        = `[itemprop="isbn"]`
	selBookLanguage    = `[itemprop="inLanguage"]`
	selBookTopicLink   = `[itemprop="keywords"] a`
	selBookActions     = ".panel-mlol-body.open-mlol-actions a"
	selBookFavourite   = ".addtofavourite"
)

// siteDateLayout is the dd/mm/yyyy format the site renders dates in.
const siteDateLayout = "02/01/2006"

// favouriteMarker is the caption shown once a book sits in the favourites list.
const favouriteMarker = "Aggiunto ai preferiti"

// actionLabels maps the action panel captions on a book page to status flags.
// notAvailableLabel spans two rendered lines.
const notAvailableLabel = "NON DISPONIBILE\nPER LA TUA BIBLIOTECA"

var actionLabels = map[string]BookStatus{
	"SCARICA EBOOK":      StatusAvailable,
	"OCCUPATO":           StatusBorrowed,
	"RIPETI IL DOWNLOAD": StatusBorrowedByMe,
	notAvailableLabel:    StatusNotAvailable,
	"PRENOTATO":          StatusReserved,
}

// leadingDigits matches a run of digits anchored at the start of a line, the
// shape of the queue position and copy count messages.
var leadingDigits = regexp.MustCompile(`^\d+`)

// styleImageURL pulls the url(...) argument out of an inline background-image.
var styleImageURL = regexp.MustCompile(`url\(['"]?([^'")]+)['"]?\)`)

// parseLoans extracts the loan entries under the given account section.
// A missing section or a malformed entry fails the whole listing.
func parseLoans(markup, section, page string) ([]Loan, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, scrapeErrWrap(page, section, err)
	}

	root := doc.Find(section)
	if root.Length() == 0 {
		return nil, scrapeErr(page, section)
	}

	var loans []Loan
	var entryErr error
	root.Find(selListEntry).EachWithBreak(func(_ int, entry *goquery.Selection) bool {
		loan, err := parseLoanEntry(entry, page)
		if err != nil {
			entryErr = err
			return false
		}
		loans = append(loans, loan)
		return true
	})
	if entryErr != nil {
		return nil, entryErr
	}
	return loans, nil
}

func parseLoanEntry(entry *goquery.Selection, page string) (Loan, error) {
	title := entry.Find(selEntryTitle).First()
	if title.Length() == 0 {
		return Loan{}, scrapeErr(page, selEntryTitle)
	}
	authors := entry.Find(selEntryAuthors).First()
	if authors.Length() == 0 {
		return Loan{}, scrapeErr(page, selEntryAuthors)
	}

	start, err := entryDate(entry, selLoanStart, page)
	if err != nil {
		return Loan{}, err
	}
	end, err := entryDate(entry, selLoanEnd, page)
	if err != nil {
		return Loan{}, err
	}

	return Loan{
		Title:   strings.TrimSpace(title.Text()),
		Authors: strings.TrimSpace(authors.Text()),
		Start:   start,
		End:     end,
	}, nil
}

func entryDate(entry *goquery.Selection, selector, page string) (time.Time, error) {
	cell := entry.Find(selector).First()
	if cell.Length() == 0 {
		return time.Time{}, scrapeErr(page, selector)
	}
	t, err := time.Parse(siteDateLayout, strings.TrimSpace(cell.Text()))
	if err != nil {
		return time.Time{}, scrapeErrWrap(page, selector, err)
	}
	return t, nil
}

// parseReservations extracts the reservation entries, including the queue
// position and available copy count revealed by each entry's position button.
// A missing section fails the listing; a malformed entry is counted in skipped
// and left out, matching the forgiving behavior of the account page itself.
func parseReservations(markup, page string) (reservations []Reservation, skipped int, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, 0, scrapeErrWrap(page, selReservationSection, err)
	}

	root := doc.Find(selReservationSection)
	if root.Length() == 0 {
		return nil, 0, scrapeErr(page, selReservationSection)
	}

	root.Find(selListEntry).Each(func(_ int, entry *goquery.Selection) {
		r, entryErr := parseReservationEntry(entry)
		if entryErr != nil {
			skipped++
			return
		}
		reservations = append(reservations, r)
	})
	return reservations, skipped, nil
}

func parseReservationEntry(entry *goquery.Selection) (Reservation, error) {
	title := entry.Find(selEntryTitle).First()
	if title.Length() == 0 {
		return Reservation{}, fmt.Errorf("missing %q", selEntryTitle)
	}
	authors := entry.Find(selEntryAuthors).First()
	if authors.Length() == 0 {
		return Reservation{}, fmt.Errorf("missing %q", selEntryAuthors)
	}

	queue := entry.Find(selQueueDetails).First()
	if queue.Length() == 0 {
		return Reservation{}, fmt.Errorf("missing %q", selQueueDetails)
	}
	lines := nonEmptyLines(textWithBreaks(queue))
	if len(lines) < 2 {
		return Reservation{}, fmt.Errorf("queue details not revealed: %q", queue.Text())
	}
	position, err := leadingInt(lines[0])
	if err != nil {
		return Reservation{}, fmt.Errorf("queue position: %w", err)
	}
	copies, err := leadingInt(lines[1])
	if err != nil {
		return Reservation{}, fmt.Errorf("available copies: %w", err)
	}

	return Reservation{
		Title:           strings.TrimSpace(title.Text()),
		Authors:         strings.TrimSpace(authors.Text()),
		QueuePosition:   position,
		AvailableCopies: copies,
	}, nil
}

// searchPage is one page of catalogue search results.
type searchPage struct {
	Total   int
	Books   []Book
	HasNext bool
}

// parseSearchPage extracts one results page. The result counter going missing
// fails the page, as does any malformed result entry.
func parseSearchPage(markup, base, page string) (*searchPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, scrapeErrWrap(page, selSearchResult, err)
	}

	counter := doc.Find(selSearchCount).First()
	if counter.Length() == 0 {
		return nil, scrapeErr(page, selSearchCount)
	}
	total, err := strconv.Atoi(strings.TrimSpace(counter.Text()))
	if err != nil {
		return nil, scrapeErrWrap(page, selSearchCount, err)
	}

	result := &searchPage{Total: total}
	var entryErr error
	doc.Find(selSearchResult).EachWithBreak(func(_ int, entry *goquery.Selection) bool {
		book, err := parseSearchResult(entry, base, page)
		if err != nil {
			entryErr = err
			return false
		}
		result.Books = append(result.Books, book)
		return true
	})
	if entryErr != nil {
		return nil, entryErr
	}

	result.HasNext = doc.Find(selNextPage).Length() > 0
	return result, nil
}

func parseSearchResult(entry *goquery.Selection, base, page string) (Book, error) {
	title := entry.Find(selBookTitle).First()
	if title.Length() == 0 {
		return Book{}, scrapeErr(page, selBookTitle)
	}

	link := entry.Find(selBookURL).First()
	href, ok := link.Attr("href")
	if !ok {
		return Book{}, scrapeErr(page, selBookURL)
	}
	id, err := intQueryParam(href, "id")
	if err != nil {
		return Book{}, scrapeErrWrap(page, selBookURL, err)
	}

	authors, err := parseAuthorLinks(entry, page)
	if err != nil {
		return Book{}, err
	}

	coverEl := entry.Find(selBookCover).First()
	if coverEl.Length() == 0 {
		return Book{}, scrapeErr(page, selBookCover)
	}
	cover := ""
	if style, ok := coverEl.Attr("style"); ok {
		if m := styleImageURL.FindStringSubmatch(style); m != nil {
			cover = m[1]
		}
	}

	return Book{
		ID:      id,
		Title:   strings.TrimSpace(title.Text()),
		Authors: authors,
		Cover:   cover,
		URL:     absoluteURL(base, href),
	}, nil
}

// parseBookDetails extracts the full record from a book detail page.
func parseBookDetails(markup string, id int, base, page string) (*Book, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, scrapeErrWrap(page, selBookRoot, err)
	}

	root := doc.Find(selBookRoot).First()
	if root.Length() == 0 {
		return nil, scrapeErr(page, selBookRoot)
	}

	format, err := requiredAttr(root, selBookFormat, "content", page)
	if err != nil {
		return nil, err
	}
	cover, err := requiredAttr(root, selBookCover, "src", page)
	if err != nil {
		return nil, err
	}
	title, err := requiredText(root, selBookTitle, page)
	if err != nil {
		return nil, err
	}

	authors, err := parseAuthorLinks(root, page)
	if err != nil {
		return nil, err
	}

	publisherEl := root.Find(selBookPublisher).First()
	if publisherEl.Length() == 0 {
		return nil, scrapeErr(page, selBookPublisher)
	}
	publisherHref, _ := publisherEl.Attr("href")
	publisherID, err := intQueryParam(publisherHref, "selpub")
	if err != nil {
		return nil, scrapeErrWrap(page, selBookPublisher, err)
	}

	publishedRaw, err := requiredAttr(root, selBookPublished, "content", page)
	if err != nil {
		return nil, err
	}
	published, err := time.Parse(siteDateLayout, publishedRaw)
	if err != nil {
		return nil, scrapeErrWrap(page, selBookPublished, err)
	}

	description, err := requiredText(root, selBookDescription, page)
	if err != nil {
		return nil, err
	}
	language, err := requiredText(root, selBookLanguage, page)
	if err != nil {
		return nil, err
	}

	var isbn []string
	root.Find(selBookISBN).Each(func(_ int, s *goquery.Selection) {
		isbn = append(isbn, strings.TrimSpace(s.Text()))
	})

	var topics []Topic
	var topicErr error
	root.Find(selBookTopicLink).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		topicID, err := intQueryParam(href, "idcce")
		if err != nil {
			topicErr = scrapeErrWrap(page, selBookTopicLink, err)
			return false
		}
		topics = append(topics, Topic{ID: topicID, Name: strings.TrimSpace(s.Text())})
		return true
	})
	if topicErr != nil {
		return nil, topicErr
	}

	var status BookStatus
	doc.Find(selBookActions).Each(func(_ int, s *goquery.Selection) {
		if flag, ok := actionLabels[normalizeLabel(textWithBreaks(s))]; ok {
			status |= flag
		}
	})

	favourite, err := requiredText(doc.Selection, selBookFavourite, page)
	if err != nil {
		return nil, err
	}

	return &Book{
		ID:              id,
		Title:           title,
		Authors:         authors,
		Cover:           cover,
		Format:          format,
		Publisher:       &Publisher{ID: publisherID, Name: strings.TrimSpace(publisherEl.Text())},
		PublicationDate: published,
		Description:     description,
		ISBN:            isbn,
		Language:        language,
		Topics:          topics,
		Status:          status,
		Favourite:       strings.Contains(favourite, favouriteMarker),
	}, nil
}

func requiredText(root *goquery.Selection, selector, page string) (string, error) {
	el := root.Find(selector).First()
	if el.Length() == 0 {
		return "", scrapeErr(page, selector)
	}
	return strings.TrimSpace(el.Text()), nil
}

func requiredAttr(root *goquery.Selection, selector, attr, page string) (string, error) {
	el := root.Find(selector).First()
	if el.Length() == 0 {
		return "", scrapeErr(page, selector)
	}
	value, ok := el.Attr(attr)
	if !ok {
		return "", scrapeErrWrap(page, selector, fmt.Errorf("missing %q attribute", attr))
	}
	return strings.TrimSpace(value), nil
}

func parseAuthorLinks(root *goquery.Selection, page string) ([]Author, error) {
	var authors []Author
	var authorErr error
	root.Find(selBookAuthorLink).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		id, err := intQueryParam(href, "selcrea")
		if err != nil {
			authorErr = scrapeErrWrap(page, selBookAuthorLink, err)
			return false
		}
		authors = append(authors, Author{ID: id, Name: strings.TrimSpace(s.Text())})
		return true
	})
	if authorErr != nil {
		return nil, authorErr
	}
	return authors, nil
}

// intQueryParam parses an integer query string parameter out of a raw URL.
func intQueryParam(raw, param string) (int, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return 0, err
	}
	value := u.Query().Get(param)
	if value == "" {
		return 0, fmt.Errorf("missing %q query parameter in %q", param, raw)
	}
	return strconv.Atoi(value)
}

// leadingInt parses the digit run a queue message starts with.
func leadingInt(s string) (int, error) {
	m := leadingDigits.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, fmt.Errorf("no leading number in %q", s)
	}
	return strconv.Atoi(m)
}

// nonEmptyLines splits text into trimmed lines, dropping blank ones.
func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// normalizeLabel collapses an action caption to the trimmed per-line form the
// label table uses.
func normalizeLabel(s string) string {
	return strings.Join(nonEmptyLines(s), "\n")
}

// textWithBreaks renders the selection's text the way a browser lays it out,
// with <br> elements as line breaks. goquery's Text drops them, which would
// glue multi-line captions together.
func textWithBreaks(s *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			b.WriteString("\n")
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range s.Nodes {
		walk(node)
	}
	return b.String()
}

// absoluteURL resolves a scraped href against the site base URL.
func absoluteURL(base, href string) string {
	if href == "" || strings.Contains(href, "://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return base + href
}
