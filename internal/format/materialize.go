package format

import (
	"fmt"

	"github.com/mfeng-dev/thesisfmt/internal/classify"
	"github.com/mfeng-dev/thesisfmt/internal/config"
	"github.com/mfeng-dev/thesisfmt/internal/ingest"
	"github.com/mfeng-dev/thesisfmt/internal/wordml"
)

// Materialize renders an imported draft as a fresh docx with the
// template applied. Headings are emitted bold so a later pass over the
// generated file classifies them the same way. Returns the docx bytes
// and the number of paragraphs written.
func Materialize(d *ingest.Draft, tpl *config.Template, progress ProgressFunc) ([]byte, int, error) {
	if err := tpl.Validate(); err != nil {
		return nil, 0, fmt.Errorf("模板无效: %w", err)
	}

	levels := ingest.Resolve(d)

	paras := make([]wordml.NewParagraph, 0, len(d.Paragraphs))
	for i, p := range d.Paragraphs {
		lv := levels[i]
		paras = append(paras, wordml.NewParagraph{
			Text:   p.Text,
			Bold:   lv != classify.Body,
			Format: levelFormat(tpl, lv),
		})
		if progress != nil {
			progress(fmt.Sprintf("[%s] %s", lv.Label(), preview(p.Text)))
		}
	}

	data, err := wordml.BuildDocument(paras)
	if err != nil {
		return nil, 0, err
	}
	return data, len(paras), nil
}
