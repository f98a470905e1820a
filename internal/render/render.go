package render

import "strings"

// KeywordCase controls how SQL keywords are emitted.
type KeywordCase string

const (
	KeywordCaseUpper KeywordCase = "upper"
	KeywordCaseLower KeywordCase = "lower"
)

// Options controls statement text layout. It never affects statement
// content or ordering, only presentation.
type Options struct {
	KeywordCase KeywordCase
	IndentWidth int
}

// DefaultOptions returns the options used when the caller passes the zero
// value: uppercase keywords, four-space indent.
func DefaultOptions() Options {
	return Options{
		KeywordCase: KeywordCaseUpper,
		IndentWidth: 4,
	}
}

// Keyword renders a SQL keyword according to the configured case. Keywords
// are passed in canonical uppercase form.
func (o Options) Keyword(kw string) string {
	if o.KeywordCase == KeywordCaseLower {
		return strings.ToLower(kw)
	}
	return kw
}

// Indent returns the indentation string for one level.
func (o Options) Indent() string {
	width := o.IndentWidth
	if width <= 0 {
		width = 4
	}
	return strings.Repeat(" ", width)
}
