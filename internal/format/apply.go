// Package format turns template prescriptions into concrete document
// formatting: it drives classification, computes per-level run and
// paragraph attributes, applies them during conversion, and diffs
// existing documents against a template without mutating them.
package format

import (
	"github.com/mfeng-dev/thesisfmt/internal/classify"
	"github.com/mfeng-dev/thesisfmt/internal/config"
	"github.com/mfeng-dev/thesisfmt/internal/wordml"
)

const (
	// Spacing and indents are stored in twentieths of a point.
	twipsPerPoint = 20
	// w:line value of single spacing under lineRule auto.
	singleLineTwips = 240
)

// RunFormat computes the character formatting for a level.
func RunFormat(tpl *config.Template, lv classify.Level) wordml.RunFormat {
	return wordml.RunFormat{
		SizeHalfPt: tpl.SizeFor(lv),
		EastAsia:   tpl.ChineseFont,
		ASCII:      tpl.WesternFont,
	}
}

// ParagraphFormat computes the paragraph formatting for a level. Body
// paragraphs get the template's line-spacing multiplier and, when the
// template asks for it, a two-character first-line indent sized to the
// body font (one character per point of font size, so halfPt × 20
// twips). Headings are always single-spaced and never indented.
func ParagraphFormat(tpl *config.Template, lv classify.Level) wordml.ParagraphFormat {
	before, after := tpl.SpacingFor(lv)

	line := singleLineTwips
	if lv == classify.Body {
		line = int(singleLineTwips * tpl.LineSpacing)
	}

	firstLine := 0
	if lv == classify.Body && tpl.FirstLineIndent {
		firstLine = tpl.SizeFor(classify.Body) * twipsPerPoint
	}

	return wordml.ParagraphFormat{
		BeforeTwips:    int(before * twipsPerPoint),
		AfterTwips:     int(after * twipsPerPoint),
		LineTwips:      line,
		FirstLineTwips: firstLine,
	}
}

// levelFormat bundles both halves for one level.
func levelFormat(tpl *config.Template, lv classify.Level) wordml.Format {
	return wordml.Format{
		Run:  RunFormat(tpl, lv),
		Para: ParagraphFormat(tpl, lv),
	}
}

// classifyInput adapts document paragraphs for the classifier.
func classifyInput(paras []wordml.Paragraph) []classify.Paragraph {
	out := make([]classify.Paragraph, len(paras))
	for i := range paras {
		out[i] = classify.Paragraph{
			Text:    paras[i].Text,
			Bold:    paras[i].IsBold(),
			MaxSize: paras[i].MaxRunSize(),
		}
	}
	return out
}
