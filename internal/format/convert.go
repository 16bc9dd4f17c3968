package format

import (
	"fmt"
	"strings"

	"github.com/mfeng-dev/thesisfmt/internal/classify"
	"github.com/mfeng-dev/thesisfmt/internal/config"
	"github.com/mfeng-dev/thesisfmt/internal/wordml"
)

// ProgressFunc receives one human-readable line per processed paragraph,
// in document order. The converter never assumes what sits behind it —
// a terminal, a job log, or nothing (nil).
type ProgressFunc func(line string)

const previewRunes = 42

// Convert classifies every paragraph of doc and records the template's
// target formatting on it. Empty and run-less paragraphs are skipped —
// there is nothing detectable to act on. Returns the number of
// paragraphs processed. The document itself is only mutated in memory;
// the caller decides when and where to save.
func Convert(doc *wordml.Document, tpl *config.Template, progress ProgressFunc) (int, error) {
	if err := tpl.Validate(); err != nil {
		return 0, fmt.Errorf("模板无效: %w", err)
	}

	paras := doc.Paragraphs()
	input := classifyInput(paras)
	sizes := classify.Profile(input)

	count := 0
	for i := range paras {
		if strings.TrimSpace(paras[i].Text) == "" || len(paras[i].Runs) == 0 {
			continue
		}
		lv := classify.Classify(input, sizes, i)
		doc.SetFormat(i, levelFormat(tpl, lv))
		count++
		if progress != nil {
			progress(fmt.Sprintf("[%s] %s", lv.Label(), preview(paras[i].Text)))
		}
	}
	return count, nil
}

// ConvertFile runs the whole conversion: load, convert, save to
// outputPath. The input file is never touched and a failed conversion
// leaves no output file behind.
func ConvertFile(inputPath, outputPath string, tpl *config.Template, progress ProgressFunc) (int, error) {
	doc, err := wordml.Open(inputPath)
	if err != nil {
		return 0, err
	}
	count, err := Convert(doc, tpl, progress)
	if err != nil {
		return 0, err
	}
	if err := doc.Save(outputPath); err != nil {
		return 0, err
	}
	return count, nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "..."
}
