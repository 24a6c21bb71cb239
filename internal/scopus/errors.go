package scopus

import "errors"

var (
	ErrEmptyISSN          = errors.New("empty ISSN")
	ErrSourcesUnavailable = errors.New("sources page unavailable")
	ErrISSNInputNotFound  = errors.New("ISSN input not found")
	ErrNoResults          = errors.New("no results")
)

// ScrapeError is a lookup failure caused by the Scopus site or the input,
// as opposed to a local fault such as the browser failing to start. Msg is
// safe to show to the user.
type ScrapeError struct {
	Msg string
	Err error
}

func (e *ScrapeError) Error() string {
	return e.Msg
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

func scrapeError(msg string, err error) error {
	return &ScrapeError{Msg: msg, Err: err}
}
