package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Exporter writes a balance export of every linked account.
type Exporter interface {
	Export(ctx context.Context) (int, error)
}

// ExportWorker runs the balance export on a cron schedule.
type ExportWorker struct {
	exporter Exporter
	schedule cron.Schedule
	spec     string
}

// NewExportWorker creates an ExportWorker. spec accepts five or six cron fields or a descriptor such as "@daily".
func NewExportWorker(exporter Exporter, spec string) (*ExportWorker, error) {
	schedule, err := scheduleParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parsing export schedule %q: %w", spec, err)
	}
	return &ExportWorker{
		exporter: exporter,
		schedule: schedule,
		spec:     spec,
	}, nil
}

// Run exports once on startup and then on schedule. It blocks until the context is cancelled
// and waits for a running export to finish.
func (w *ExportWorker) Run(ctx context.Context) {
	slog.Info("ExportWorker: starting", "schedule", w.spec)

	// Export immediately on startup
	w.export(ctx, "initial export")

	logger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelDebug))
	c := cron.New(cron.WithLogger(logger))
	job := cron.NewChain(cron.SkipIfStillRunning(logger)).Then(cron.FuncJob(func() { w.export(ctx, "export") }))
	c.Schedule(w.schedule, job)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("ExportWorker: shutting down")
}

func (w *ExportWorker) export(ctx context.Context, what string) {
	rows, err := w.exporter.Export(ctx)
	if err != nil {
		slog.Error("ExportWorker: "+what+" failed", "error", err)
		return
	}
	slog.Info("ExportWorker: "+what+" completed", "rows", rows)
}
