package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mfeng-dev/thesisfmt/internal/classify"
	"github.com/mfeng-dev/thesisfmt/internal/config"
	"github.com/mfeng-dev/thesisfmt/internal/wordml"
)

// Issue reports one paragraph whose formatting differs from the
// template. Ephemeral: produced for a report, never persisted.
type Issue struct {
	Level string   `json:"level"`
	Text  string   `json:"text"`
	Items []string `json:"issues"`
}

const issueTextRunes = 40

// Check diffs a document against a template without mutating it. Each
// non-empty paragraph with runs is classified and compared: a size
// mismatch is reported at most once per paragraph (the first run whose
// declared size differs from the target), and Body paragraphs missing a
// first-line indent are flagged when the template requires one.
//
// Runs that declare no size at all (w:sz absent, read as 0) are not
// checked: they inherit from styles the checker does not resolve, and
// flagging them would drown the report in false positives.
func Check(doc *wordml.Document, tpl *config.Template) ([]Issue, error) {
	if err := tpl.Validate(); err != nil {
		return nil, fmt.Errorf("模板无效: %w", err)
	}

	paras := doc.Paragraphs()
	input := classifyInput(paras)
	sizes := classify.Profile(input)

	var issues []Issue
	for i := range paras {
		text := strings.TrimSpace(paras[i].Text)
		if text == "" || len(paras[i].Runs) == 0 {
			continue
		}

		lv := classify.Classify(input, sizes, i)
		target := tpl.SizeFor(lv)

		var items []string
		for _, run := range paras[i].Runs {
			if run.Size != 0 && run.Size != target {
				items = append(items, fmt.Sprintf(
					"字号应为 %spt，当前为 %spt",
					halfPtString(target), halfPtString(run.Size)))
				break
			}
		}

		if lv == classify.Body && tpl.FirstLineIndent && paras[i].FirstLine == "" {
			items = append(items, "正文缺少首行缩进")
		}

		if len(items) > 0 {
			issues = append(issues, Issue{
				Level: lv.Key(),
				Text:  clipRunes(text, issueTextRunes),
				Items: items,
			})
		}
	}
	return issues, nil
}

// CheckFile loads path and diffs it against the template.
func CheckFile(path string, tpl *config.Template) ([]Issue, error) {
	doc, err := wordml.Open(path)
	if err != nil {
		return nil, err
	}
	return Check(doc, tpl)
}

// halfPtString renders a half-point value in points ("21" → "10.5").
func halfPtString(halfPt int) string {
	return strconv.FormatFloat(float64(halfPt)/2, 'f', -1, 64)
}

func clipRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
