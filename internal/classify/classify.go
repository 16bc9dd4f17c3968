// Package classify infers the structural level of document paragraphs
// (title, numbered headings, body text) from numbering patterns, length,
// boldness and relative font size. It never reads paragraph styles, so it
// works on documents with no usable style information at all.
package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Paragraph carries the attributes the classifier reads. MaxSize is the
// largest declared run size in half-points, 0 when no run declares one.
type Paragraph struct {
	Text    string
	Bold    bool
	MaxSize int
}

const (
	// Paragraphs longer than this can never be headings.
	headingMaxRunes = 40
	// Upper bound for the short-and-prominent main title rule.
	mainTitleMaxRunes = 30
)

var (
	// X.X.X numbering, ASCII or full-width digits and periods.
	reHeading3 = regexp.MustCompile(`^[0-9０-９]+[.。][0-9０-９]+[.。][0-9０-９]+`)
	// X.X prefix. The rule additionally requires that the match is not
	// continued by another .X, so 1.2.3 never satisfies it.
	reHeading2     = regexp.MustCompile(`^[0-9０-９]+[.。][0-9０-９]+`)
	reContinuation = regexp.MustCompile(`^[.。][0-9０-９]`)
	// Leading integer + separator, CJK numeral + separator, or 第X章/节/部/篇.
	reHeading1 = regexp.MustCompile(`^([0-9０-９]+[\s　.。、]` +
		`|[一二三四五六七八九十百]+[、.]` +
		`|第[一二三四五六七八九十百0-9]+[章节部篇])`)
)

// ruleContext is the evaluated view of one paragraph that rules match on.
type ruleContext struct {
	text     string // trimmed
	runes    int
	bold     bool
	size     int
	prevSize int
	nextSize int
}

type rule struct {
	name  string
	level Level
	match func(ruleContext) bool
}

// rules is the classification policy. First match wins; the order is part
// of the contract (a paragraph matching X.X.X must be tried as Heading3
// before the weaker patterns get a chance).
var rules = []rule{
	{
		name:  "empty-or-overlong",
		level: Body,
		match: func(c ruleContext) bool {
			return c.text == "" || c.runes > headingMaxRunes
		},
	},
	{
		name:  "three-level-numbering",
		level: Heading3,
		match: func(c ruleContext) bool {
			return reHeading3.MatchString(c.text)
		},
	},
	{
		name:  "two-level-numbering",
		level: Heading2,
		match: func(c ruleContext) bool {
			return matchesTwoLevel(c.text)
		},
	},
	{
		name:  "one-level-numbering",
		level: Heading1,
		match: func(c ruleContext) bool {
			return reHeading1.MatchString(c.text)
		},
	},
	{
		name:  "short-and-prominent",
		level: MainTitle,
		match: func(c ruleContext) bool {
			if c.runes > mainTitleMaxRunes {
				return false
			}
			localPeak := c.size > 0 && c.size > c.prevSize && c.size > c.nextSize
			return c.bold || localPeak
		},
	},
}

// matchesTwoLevel reports whether text starts with X.X numbering that is
// not continued by a third .X component.
func matchesTwoLevel(text string) bool {
	m := reHeading2.FindString(text)
	if m == "" {
		return false
	}
	return !reContinuation.MatchString(text[len(m):])
}

// Profile precomputes each paragraph's maximum run size. Classification of
// paragraph i reads the sizes of its neighbors i-1 and i+1, so the whole
// profile must exist before the first Classify call.
func Profile(paras []Paragraph) []int {
	sizes := make([]int, len(paras))
	for i, p := range paras {
		sizes[i] = p.MaxSize
	}
	return sizes
}

// Classify assigns a level to paragraph i. sizes must be the profile of
// the same paragraph sequence. Missing neighbors count as size 0, so a
// bold or nonzero-sized short paragraph at a document boundary still
// qualifies as a main title. Classify is total: anything no rule claims
// is body text.
func Classify(paras []Paragraph, sizes []int, i int) Level {
	p := paras[i]
	text := strings.TrimSpace(p.Text)
	c := ruleContext{
		text:  text,
		runes: utf8.RuneCountInString(text),
		bold:  p.Bold,
		size:  p.MaxSize,
	}
	if i > 0 {
		c.prevSize = sizes[i-1]
	}
	if i < len(sizes)-1 {
		c.nextSize = sizes[i+1]
	}
	for _, r := range rules {
		if r.match(c) {
			return r.level
		}
	}
	return Body
}
