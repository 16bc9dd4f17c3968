package wordml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// rewriteDocument re-streams document.xml, splicing recorded formatting
// into each body paragraph and echoing everything else byte-equivalent.
// Inside a formatted paragraph it overrides w:spacing / w:ind on the
// paragraph properties and w:rFonts / w:sz / w:szCs on each direct run's
// properties, creating the property containers as first child when the
// source paragraph has none. Attributes and elements it does not manage
// are preserved as they were.
func rewriteDocument(docXML []byte, formats map[int]Format) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))
	rw := &rewriter{formats: formats}

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("rewrite %s: %w", documentPath, err)
		}
		rw.handle(tok)
	}
	return rw.out.Bytes(), nil
}

type rewriter struct {
	out     bytes.Buffer
	formats map[int]Format

	stack    []string
	tblDepth int
	paraIdx  int

	// Active format; nil while outside a formatted paragraph.
	cur *Format

	// pendingPPr/pendingRPr are set right after <w:p>/<w:r> opens: if the
	// next structural token is not the matching properties element, a
	// fresh one is injected first (properties must be the first child).
	pendingPPr bool
	pendingRPr bool

	inPPr      bool
	sawSpacing bool
	sawInd     bool

	inRun    bool
	inRPr    bool
	sawFonts bool
	sawSz    bool
	sawSzCs  bool
}

func (rw *rewriter) top() string {
	if len(rw.stack) == 0 {
		return ""
	}
	return rw.stack[len(rw.stack)-1]
}

func (rw *rewriter) handle(tok xml.Token) {
	// Whitespace and comments between an opening tag and its properties
	// child pass through without resolving a pending injection.
	if rw.pendingPPr || rw.pendingRPr {
		switch t := tok.(type) {
		case xml.CharData:
			if isWhitespace(t) {
				echoToken(&rw.out, tok)
				return
			}
		case xml.Comment:
			echoToken(&rw.out, tok)
			return
		}
	}

	switch t := tok.(type) {
	case xml.StartElement:
		rw.handleStart(t)
	case xml.EndElement:
		rw.handleEnd(t)
	default:
		echoToken(&rw.out, tok)
	}
}

func (rw *rewriter) handleStart(t xml.StartElement) {
	parent := rw.top()
	local := t.Name.Local

	// Resolve pending injections: anything other than the expected
	// properties element means the paragraph/run had none.
	if rw.pendingPPr {
		rw.pendingPPr = false
		if local == "pPr" && parent == "p" {
			rw.inPPr = true
			rw.sawSpacing = false
			rw.sawInd = false
			rw.stack = append(rw.stack, local)
			echoToken(&rw.out, t)
			return
		}
		rw.injectPPr()
	} else if rw.pendingRPr {
		rw.pendingRPr = false
		if local == "rPr" && parent == "r" {
			rw.inRPr = true
			rw.sawFonts = false
			rw.sawSz = false
			rw.sawSzCs = false
			rw.stack = append(rw.stack, local)
			echoToken(&rw.out, t)
			return
		}
		rw.injectRPr()
	}

	rw.stack = append(rw.stack, local)

	switch local {
	case "tbl":
		rw.tblDepth++

	case "p":
		if parent == "body" && rw.tblDepth == 0 {
			if f, ok := rw.formats[rw.paraIdx]; ok {
				cp := f
				rw.cur = &cp
				rw.pendingPPr = true
			}
			rw.paraIdx++
		}

	case "r":
		if rw.cur != nil && parent == "p" {
			rw.inRun = true
			rw.pendingRPr = true
		}

	// For managed elements that already exist, only the start tag is
	// rewritten; the original end tag closes them as usual.
	case "spacing":
		if rw.cur != nil && rw.inPPr && parent == "pPr" {
			rw.sawSpacing = true
			writeStart(&rw.out, rawName(t.Name), rw.spacingAttrs(t.Attr))
			return
		}

	case "ind":
		if rw.cur != nil && rw.inPPr && parent == "pPr" {
			rw.sawInd = true
			writeStart(&rw.out, rawName(t.Name), rw.indAttrs(t.Attr))
			return
		}

	case "rFonts":
		if rw.cur != nil && rw.inRPr && parent == "rPr" {
			rw.sawFonts = true
			writeStart(&rw.out, rawName(t.Name), rw.fontAttrs(t.Attr))
			return
		}

	case "sz", "szCs":
		if rw.cur != nil && rw.inRPr && parent == "rPr" {
			if local == "sz" {
				rw.sawSz = true
			} else {
				rw.sawSzCs = true
			}
			writeStart(&rw.out, rawName(t.Name), rw.sizeAttrs(t.Attr))
			return
		}
	}

	echoToken(&rw.out, t)
}

func (rw *rewriter) handleEnd(t xml.EndElement) {
	local := t.Name.Local

	// A childless <w:p/> or <w:r/> still owes its properties element.
	if rw.pendingPPr {
		rw.pendingPPr = false
		rw.injectPPr()
	} else if rw.pendingRPr {
		rw.pendingRPr = false
		rw.injectRPr()
	}

	if len(rw.stack) > 0 {
		rw.stack = rw.stack[:len(rw.stack)-1]
	}

	switch local {
	case "tbl":
		rw.tblDepth--

	case "pPr":
		if rw.cur != nil && rw.inPPr {
			rw.inPPr = false
			if !rw.sawSpacing {
				writeEmpty(&rw.out, "w:spacing", rw.spacingAttrs(nil))
			}
			if !rw.sawInd && rw.cur.Para.FirstLineTwips > 0 {
				writeEmpty(&rw.out, "w:ind", rw.indAttrs(nil))
			}
		}

	case "rPr":
		if rw.cur != nil && rw.inRPr {
			rw.inRPr = false
			if !rw.sawFonts {
				writeEmpty(&rw.out, "w:rFonts", rw.fontAttrs(nil))
			}
			if !rw.sawSz {
				writeEmpty(&rw.out, "w:sz", rw.sizeAttrs(nil))
			}
			if !rw.sawSzCs {
				writeEmpty(&rw.out, "w:szCs", rw.sizeAttrs(nil))
			}
		}

	case "r":
		if rw.inRun && rw.top() == "p" {
			rw.inRun = false
		}

	case "p":
		if rw.cur != nil && rw.top() == "body" && rw.tblDepth == 0 {
			rw.cur = nil
		}
	}

	echoToken(&rw.out, t)
}

// injectPPr emits complete paragraph properties for a paragraph that
// had none.
func (rw *rewriter) injectPPr() {
	writeStart(&rw.out, "w:pPr", nil)
	writeEmpty(&rw.out, "w:spacing", rw.spacingAttrs(nil))
	if rw.cur.Para.FirstLineTwips > 0 {
		writeEmpty(&rw.out, "w:ind", rw.indAttrs(nil))
	}
	writeEnd(&rw.out, "w:pPr")
}

// injectRPr emits complete run properties for a run that had none.
func (rw *rewriter) injectRPr() {
	writeStart(&rw.out, "w:rPr", nil)
	writeEmpty(&rw.out, "w:rFonts", rw.fontAttrs(nil))
	writeEmpty(&rw.out, "w:sz", rw.sizeAttrs(nil))
	writeEmpty(&rw.out, "w:szCs", rw.sizeAttrs(nil))
	writeEnd(&rw.out, "w:rPr")
}

// spacingAttrs forces before/after/line/lineRule to the target values,
// keeping any other attributes the source element had.
func (rw *rewriter) spacingAttrs(existing []xml.Attr) []xml.Attr {
	p := rw.cur.Para
	attrs := keepAttrs(existing, "before", "after", "line", "lineRule")
	return append(attrs,
		wAttr("before", strconv.Itoa(p.BeforeTwips)),
		wAttr("after", strconv.Itoa(p.AfterTwips)),
		wAttr("line", strconv.Itoa(p.LineTwips)),
		wAttr("lineRule", "auto"),
	)
}

// indAttrs sets or strips the first-line indent. Other indent attributes
// (left, right, hanging) pass through untouched.
func (rw *rewriter) indAttrs(existing []xml.Attr) []xml.Attr {
	p := rw.cur.Para
	attrs := keepAttrs(existing, "firstLine", "firstLineChars")
	if p.FirstLineTwips > 0 {
		attrs = append(attrs, wAttr("firstLine", strconv.Itoa(p.FirstLineTwips)))
	}
	return attrs
}

// fontAttrs declares both script families. Word assigns the East-Asian
// and western faces per character range, so no run splitting is needed.
func (rw *rewriter) fontAttrs(existing []xml.Attr) []xml.Attr {
	r := rw.cur.Run
	attrs := keepAttrs(existing, "ascii", "hAnsi", "eastAsia", "cs")
	return append(attrs,
		wAttr("ascii", r.ASCII),
		wAttr("hAnsi", r.ASCII),
		wAttr("eastAsia", r.EastAsia),
		wAttr("cs", r.ASCII),
	)
}

func (rw *rewriter) sizeAttrs(existing []xml.Attr) []xml.Attr {
	attrs := keepAttrs(existing, "val")
	return append(attrs, wAttr("val", strconv.Itoa(rw.cur.Run.SizeHalfPt)))
}
