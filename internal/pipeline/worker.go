package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/mfeng-dev/thesisfmt/internal/config"
	"github.com/mfeng-dev/thesisfmt/internal/format"
	"github.com/mfeng-dev/thesisfmt/internal/ingest"
	"github.com/mfeng-dev/thesisfmt/internal/wordml"
)

// Worker processes conversion jobs. A docx upload is reformatted in
// place; any other supported source is imported and materialized as a
// fresh docx. Each job is owned by exactly one worker, so its progress
// log grows strictly in document order.
type Worker struct {
	store *config.Store
	stats *ConvertStats
	log   *slog.Logger
}

func NewWorker(store *config.Store, stats *ConvertStats, log *slog.Logger) *Worker {
	return &Worker{
		store: store,
		stats: stats,
		log:   log,
	}
}

// Process runs the full conversion for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename, "template", job.TemplateName)
	start := time.Now()

	tpl, ok := w.store.Get(job.TemplateName)
	if !ok {
		log.Error("unknown template")
		job.AddError(fmt.Sprintf("模板不存在: %s", job.TemplateName))
		job.SetStatus(StatusFailed, "template")
		return
	}

	var (
		result []byte
		count  int
		err    error
	)
	if strings.EqualFold(filepath.Ext(job.Filename), ".docx") {
		result, count, err = w.convertDocx(job, tpl)
	} else {
		result, count, err = w.importSource(job, tpl)
	}
	if err != nil {
		log.Error("conversion failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, job.Phase)
		return
	}

	job.SetResult(result)
	job.SetStatus(StatusCompleted, "done")
	w.stats.Record(time.Since(start).Milliseconds())
	log.Info("conversion complete", "paragraphs", count, "duration_ms", time.Since(start).Milliseconds())
}

func (w *Worker) convertDocx(job *Job, tpl *config.Template) ([]byte, int, error) {
	job.SetStatus(StatusParsing, "parsing")
	doc, err := wordml.Load(job.FileData())
	if err != nil {
		return nil, 0, err
	}

	job.SetStatus(StatusFormatting, "formatting")
	count, err := format.Convert(doc, tpl, job.AppendLine)
	if err != nil {
		return nil, 0, err
	}

	data, err := doc.Bytes()
	if err != nil {
		return nil, 0, err
	}
	return data, count, nil
}

func (w *Worker) importSource(job *Job, tpl *config.Template) ([]byte, int, error) {
	job.SetStatus(StatusParsing, "parsing")
	p, err := ingest.ForFile(job.Filename)
	if err != nil {
		return nil, 0, err
	}
	draft, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		return nil, 0, err
	}

	job.SetStatus(StatusFormatting, "formatting")
	return format.Materialize(draft, tpl, job.AppendLine)
}
