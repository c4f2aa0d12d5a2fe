package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/s0up4200/surveyarr/batch"
	"github.com/s0up4200/surveyarr/qualtrics"
)

var (
	exportOut         string
	exportInterval    time.Duration
	exportTimeout     time.Duration
	exportConcurrency int
	exportFormat      string
	exportSince       string
	exportLabels      bool
	exportQuiet       bool
)

var exportCmd = &cobra.Command{
	Use:   "export SURVEY_ID...",
	Short: "Export survey responses to CSV files",
	Long: `Export the responses of one or more surveys. Each survey is written to
<out>/<SURVEY_ID>.csv. Several surveys are exported in parallel; a failing
survey does not stop the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output directory (default from config)")
	exportCmd.Flags().DurationVar(&exportInterval, "interval", 0, "delay between progress checks (default from config)")
	exportCmd.Flags().DurationVar(&exportTimeout, "timeout", 0, "give up after this long, 0 for no limit (default from config)")
	exportCmd.Flags().IntVarP(&exportConcurrency, "concurrency", "c", 0, "surveys exported at once (default from config)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "download format: csv or tsv (default from config)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only responses recorded on or after this date")
	exportCmd.Flags().BoolVar(&exportLabels, "labels", false, "export choice labels instead of recodes")
	exportCmd.Flags().BoolVarP(&exportQuiet, "quiet", "q", false, "hide the progress bar")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	settings := cfg.Export
	if cmd.Flags().Changed("out") {
		settings.OutputDir = exportOut
	}
	if cmd.Flags().Changed("interval") {
		settings.PollInterval = exportInterval
	}
	if cmd.Flags().Changed("timeout") {
		settings.Timeout = exportTimeout
	}
	if cmd.Flags().Changed("concurrency") {
		settings.Concurrency = exportConcurrency
	}
	if cmd.Flags().Changed("format") {
		settings.Format = exportFormat
	}

	opts := qualtrics.ExportOptions{Format: settings.Format}
	if exportSince != "" {
		since, err := cast.ToTimeE(exportSince)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
		opts.StartDate = &since
	}
	if exportLabels {
		opts.UseLabels = qualtrics.Ptr(true)
	}

	if err := os.MkdirAll(settings.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.Timeout)
		defer cancel()
	}

	progress := newExportProgress(len(args), exportQuiet)

	jobs := make([]batch.Job, len(args))
	for i, surveyID := range args {
		jobs[i] = batch.Job{Request: qualtrics.ExportRequest{
			SurveyID:     surveyID,
			Options:      opts,
			PollInterval: settings.PollInterval,
			File:         qualtrics.FileOptions{Format: settings.Format},
			OnProgress: func(p qualtrics.ExportProgress) {
				progress.update(i, p.PercentComplete)
			},
		}}
	}

	logger.Info().Int("surveys", len(jobs)).Int("concurrency", settings.Concurrency).Msg("Exporting responses")
	summary := batch.ExportAll(ctx, client, jobs, settings.Concurrency, logger)
	progress.finish()

	for _, r := range summary.Results {
		if r.Err != nil {
			continue
		}
		path := filepath.Join(settings.OutputDir, r.Label+".csv")
		if err := writeCSVFile(path, r.Rows); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Info().Str("survey", r.Label).Int("responses", r.Rows.Len()).Str("file", path).Msg("Export written")
	}

	failed := summary.Failed()
	for _, f := range failed {
		if qualtrics.IsTimeout(f.Err) {
			logger.Error().Str("survey", f.Label).Msg("Export timed out")
			continue
		}
		logger.Error().Err(f.Err).Str("survey", f.Label).Msg("Export failed")
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d exports failed", len(failed), len(jobs))
	}
	return nil
}

// exportProgress shows the combined completion of all running exports
type exportProgress struct {
	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	percent []float64
}

func newExportProgress(n int, quiet bool) *exportProgress {
	p := &exportProgress{percent: make([]float64, n)}
	if quiet {
		return p
	}
	p.bar = progressbar.NewOptions(n*100,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(fmt.Sprintf("Exporting %d survey(s)", n)),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
	return p
}

func (p *exportProgress) update(i int, percent float64) {
	if p.bar == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.percent[i] = percent
	var total float64
	for _, v := range p.percent {
		total += v
	}
	_ = p.bar.Set(int(total))
}

func (p *exportProgress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
