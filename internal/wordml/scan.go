package wordml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// scanParagraphs streams word/document.xml and collects the direct w:p
// children of w:body, skipping anything nested in a table. Only direct
// w:r children of a paragraph count as its runs (hyperlink runs carry
// link styling and are left alone, matching the formatter's write side).
func scanParagraphs(docXML []byte) ([]Paragraph, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))

	var (
		stack    []string
		paras    []Paragraph
		cur      *Paragraph
		curRun   *Run
		tblDepth int
	)

	top := func() string {
		if len(stack) == 0 {
			return ""
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", documentPath, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			parent := top()
			local := t.Name.Local
			stack = append(stack, local)

			switch local {
			case "tbl":
				tblDepth++
			case "p":
				if parent == "body" && tblDepth == 0 {
					paras = append(paras, Paragraph{})
					cur = &paras[len(paras)-1]
				}
			case "r":
				if cur != nil && parent == "p" {
					cur.Runs = append(cur.Runs, Run{})
					curRun = &cur.Runs[len(cur.Runs)-1]
				}
			case "sz":
				if curRun != nil && parent == "rPr" {
					if n, err := strconv.Atoi(attrValue(t, "val")); err == nil {
						curRun.Size = n
					}
				}
			case "b":
				if curRun != nil && parent == "rPr" {
					v := attrValueDefault(t, "val", "1")
					if v != "0" && v != "false" && v != "off" {
						curRun.Bold = true
					}
				}
			case "ind":
				if cur != nil && curRun == nil && parent == "pPr" {
					cur.FirstLine = attrValue(t, "firstLine")
				}
			}

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			switch t.Name.Local {
			case "tbl":
				tblDepth--
			case "p":
				if cur != nil && top() == "body" && tblDepth == 0 {
					cur.Text = joinRunText(cur.Runs)
					cur = nil
				}
			case "r":
				if curRun != nil && top() == "p" {
					curRun = nil
				}
			}

		case xml.CharData:
			if curRun != nil && top() == "t" {
				curRun.Text += string(t)
			}
		}
	}

	return paras, nil
}

func joinRunText(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// attrValue returns the named attribute's value ignoring its prefix
// ("w:val" and a bare "val" both match).
func attrValue(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func attrValueDefault(t xml.StartElement, local, def string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return def
}
