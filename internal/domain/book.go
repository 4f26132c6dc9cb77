package domain

import "time"

// Book is one tracked title in the reading list.
type Book struct {
	Syncable

	Title      string `json:"title"`
	Author     string `json:"author,omitempty"`
	ThemeID    string `json:"themeId,omitempty"`
	TotalPages int    `json:"totalPages"`
	Status     string `json:"status"` // toread | reading | finished | abandoned
}

// BookProgress tracks how far through a book the reader is. PagesRead
// is set explicitly on each update; moving it backward is a deliberate
// correction, not an error.
type BookProgress struct {
	Syncable

	BookID    string     `json:"bookId"`
	PagesRead int        `json:"pagesRead"`
	LastAt    *time.Time `json:"lastAt,omitempty"`
}

// SetPage records the reader's current page at the given instant.
func (p *BookProgress) SetPage(page int, now time.Time) {
	if page < 0 {
		page = 0
	}
	p.PagesRead = page
	p.LastAt = &now
	p.Touch(now)
}

// ReadingSession is one sitting with a book.
type ReadingSession struct {
	Syncable

	BookID    string    `json:"bookId"`
	StartedAt time.Time `json:"startedAt"`
	Minutes   int       `json:"minutes"`
	FromPage  int       `json:"fromPage"`
	ToPage    int       `json:"toPage"`
	Notes     string    `json:"notes,omitempty"`
}

// BookQuote is a saved passage.
type BookQuote struct {
	Syncable

	BookID string `json:"bookId"`
	Text   string `json:"text"`
	Page   int    `json:"page,omitempty"`
}
