package ingest

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/mfeng-dev/thesisfmt/internal/classify"
)

// HTMLParser handles HTML files.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Draft, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	draft := &Draft{
		Title: strings.TrimSuffix(strings.TrimSuffix(filename, ".html"), ".htm"),
	}
	if title := findTitle(doc); title != "" {
		draft.Title = title
	}

	w := &htmlWalker{draft: draft}
	w.walk(doc)
	w.flush()

	return draft, nil
}

type htmlWalker struct {
	draft       *Draft
	buf         strings.Builder
	seenHeading bool
}

func (w *htmlWalker) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "head":
			return
		case "h1", "h2", "h3", "h4", "h5", "h6":
			w.flush()
			title := strings.TrimSpace(textContent(n))
			if title != "" {
				depth := int(n.Data[1] - '0')
				lv := headingLevel(depth, w.seenHeading)
				w.seenHeading = true
				if lv == classify.MainTitle && w.draft.Title == "" {
					w.draft.Title = title
				}
				w.draft.Paragraphs = append(w.draft.Paragraphs, Paragraph{
					Text:  title,
					Level: lv,
					Known: true,
				})
			}
			return
		case "p", "li", "blockquote", "pre", "tr":
			w.flush()
			defer w.flush()
		case "br":
			w.buf.WriteByte(' ')
		}
	}
	if n.Type == html.TextNode {
		w.buf.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

// flush turns accumulated text into one body paragraph.
func (w *htmlWalker) flush() {
	t := strings.TrimSpace(w.buf.String())
	w.buf.Reset()
	if t == "" {
		return
	}
	w.draft.Paragraphs = append(w.draft.Paragraphs, Paragraph{Text: collapseSpace(t)})
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return strings.TrimSpace(textContent(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
