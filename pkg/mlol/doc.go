// Package mlol is a client for MLOL (MediaLibraryOnLine) digital library
// sites, driven through a browser automation session.
//
// The client performs sequential, synchronous page interactions: log in,
// list the account's loans and reservations, search the catalogue, open book
// pages and submit borrow or reservation actions. Scraped HTML is parsed
// with goquery so every extraction is testable from fixtures.
//
// Invariants:
// - One authenticated session per client, owned by the caller.
// - No retries: a navigation or parse failure surfaces immediately.
// - The site is the source of truth; nothing scraped here is persisted.
package mlol
