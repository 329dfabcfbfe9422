package types

import "time"

type Book struct {
	ID       string    `json:"book_id"`
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	DateRead time.Time `json:"date_read"`
}

type Quote struct {
	ID     string `json:"quote_id"`
	Text   string `json:"text"`
	BookID string `json:"book_id"`
}

// RawBook is a books.json record as written by the scraper.
type RawBook struct {
	BookID    string   `json:"book_id"`
	Title     string   `json:"title"`
	RawTitle  string   `json:"raw_title"`
	Author    string   `json:"author"`
	DatesRead []string `json:"dates_read"`
}

type RawQuote struct {
	QuoteID string `json:"quote_id"`
	Text    string `json:"text"`
	BookID  string `json:"book_id"`
	Likes   uint   `json:"likes"`
}

type Guess struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}
