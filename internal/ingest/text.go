package ingest

import (
	"bufio"
	"io"
	"strings"
)

// TextParser handles plain text files. Paragraphs are separated by blank
// lines; levels are left entirely to the classifier.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Draft, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	draft := &Draft{
		Title: strings.TrimSuffix(filename, ".txt"),
	}

	var current strings.Builder
	flush := func() {
		t := strings.TrimSpace(current.String())
		current.Reset()
		if t != "" {
			draft.Paragraphs = append(draft.Paragraphs, Paragraph{Text: t})
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(strings.TrimSpace(line))
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return draft, nil
}
