package qualtrics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/s0up4200/surveyarr/table"
)

// Export formats accepted by the platform.
const (
	FormatCSV    = "csv"
	FormatTSV    = "tsv"
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
	FormatSPSS   = "spss"
	FormatXML    = "xml"
)

// Export job statuses reported while polling.
const (
	ExportInProgress = "inProgress"
	ExportComplete   = "complete"
	ExportFailed     = "failed"
)

const (
	// DefaultPollInterval is the delay before each progress check.
	DefaultPollInterval = 5 * time.Second

	// Rows after the header that carry question text and import ids.
	exportMetadataRows = 2
)

var exportFormats = map[string]bool{
	FormatCSV: true, FormatTSV: true, FormatJSON: true,
	FormatNDJSON: true, FormatSPSS: true, FormatXML: true,
}

var tabularFormats = map[string]rune{
	FormatCSV: ',',
	FormatTSV: '\t',
}

// ExportOptions are the parameters of a response export. Unset fields are
// not sent.
type ExportOptions struct {
	// Format defaults to FormatCSV.
	Format                          string
	StartDate                       *time.Time
	EndDate                         *time.Time
	Limit                           *int
	UseLabels                       *bool
	SeenUnansweredRecode            *int
	MultiselectSeenUnansweredRecode *int
	IncludeDisplayOrder             *bool
	FormatDecimalAsComma            *bool
	TimeZone                        *string
	NewlineReplacement              *string
	QuestionIDs                     []string
	EmbeddedDataIDs                 []string
	SurveyMetadataIDs               []string
	Compress                        *bool
	BreakoutSets                    *bool
}

type exportBody struct {
	Format                          string   `json:"format"`
	StartDate                       string   `json:"startDate,omitempty"`
	EndDate                         string   `json:"endDate,omitempty"`
	Limit                           *int     `json:"limit,omitempty"`
	UseLabels                       *bool    `json:"useLabels,omitempty"`
	SeenUnansweredRecode            *int     `json:"seenUnansweredRecode,omitempty"`
	MultiselectSeenUnansweredRecode *int     `json:"multiselectSeenUnansweredRecode,omitempty"`
	IncludeDisplayOrder             *bool    `json:"includeDisplayOrder,omitempty"`
	FormatDecimalAsComma            *bool    `json:"formatDecimalAsComma,omitempty"`
	TimeZone                        *string  `json:"timeZone,omitempty"`
	NewlineReplacement              *string  `json:"newlineReplacement,omitempty"`
	QuestionIDs                     []string `json:"questionIds,omitempty"`
	EmbeddedDataIDs                 []string `json:"embeddedDataIds,omitempty"`
	SurveyMetadataIDs               []string `json:"surveyMetadataIds,omitempty"`
	Compress                        *bool    `json:"compress,omitempty"`
	BreakoutSets                    *bool    `json:"breakoutSets,omitempty"`
}

func (o ExportOptions) body() (exportBody, error) {
	format := o.Format
	if format == "" {
		format = FormatCSV
	}
	if !exportFormats[format] {
		return exportBody{}, &ValidationError{Field: "format", Row: -1, Reason: fmt.Sprintf("%q is not an export format", format), Err: ErrUnsupportedFormat}
	}
	if o.Limit != nil && *o.Limit < 0 {
		return exportBody{}, &ValidationError{Field: "limit", Row: -1, Reason: "must not be negative"}
	}
	if o.StartDate != nil && o.EndDate != nil && o.EndDate.Before(*o.StartDate) {
		return exportBody{}, &ValidationError{Field: "endDate", Row: -1, Reason: "must not be before startDate"}
	}

	b := exportBody{
		Format:                          format,
		Limit:                           o.Limit,
		UseLabels:                       o.UseLabels,
		SeenUnansweredRecode:            o.SeenUnansweredRecode,
		MultiselectSeenUnansweredRecode: o.MultiselectSeenUnansweredRecode,
		IncludeDisplayOrder:             o.IncludeDisplayOrder,
		FormatDecimalAsComma:            o.FormatDecimalAsComma,
		TimeZone:                        o.TimeZone,
		NewlineReplacement:              o.NewlineReplacement,
		QuestionIDs:                     o.QuestionIDs,
		EmbeddedDataIDs:                 o.EmbeddedDataIDs,
		SurveyMetadataIDs:               o.SurveyMetadataIDs,
		Compress:                        o.Compress,
		BreakoutSets:                    o.BreakoutSets,
	}
	if o.StartDate != nil {
		b.StartDate = o.StartDate.UTC().Format(time.RFC3339)
	}
	if o.EndDate != nil {
		b.EndDate = o.EndDate.UTC().Format(time.RFC3339)
	}
	return b, nil
}

// ExportProgress is the state of an export job.
type ExportProgress struct {
	PercentComplete float64 `json:"percentComplete"`
	Status          string  `json:"status"`
	FileID          string  `json:"fileId,omitempty"`
}

// FileOptions controls how a downloaded export is decoded.
type FileOptions struct {
	// Format is the export format; only FormatCSV (default) and FormatTSV
	// can be decoded.
	Format string
	// Entry selects an archive member by name when the archive holds more
	// than one file.
	Entry string
}

// ExportRequest drives ExportResponses.
type ExportRequest struct {
	SurveyID string
	Options  ExportOptions
	// PollInterval defaults to DefaultPollInterval.
	PollInterval time.Duration
	File         FileOptions
	// OnProgress is called after every successful poll.
	OnProgress func(ExportProgress)
}

// CreateResponseExport starts an export job and returns its progress id.
func (c *Client) CreateResponseExport(ctx context.Context, surveyID string, opts ExportOptions) (string, error) {
	if err := requireID("surveyId", surveyID); err != nil {
		return "", err
	}
	body, err := opts.body()
	if err != nil {
		return "", err
	}

	req := c.newRequest(http.MethodPost, c.endpoint("surveys", surveyID, "export-responses"), authLower, body)
	res, err := callResult[struct {
		ProgressID string `json:"progressId"`
	}](ctx, c, req)
	if err != nil {
		return "", err
	}
	if res.ProgressID == "" {
		return "", &ProtocolError{Method: req.Method, URL: req.URL, Reason: "result has no progressId"}
	}

	c.logger.Debug().
		Str("survey_id", surveyID).
		Str("progress_id", res.ProgressID).
		Str("format", body.Format).
		Msg("Created response export")

	return res.ProgressID, nil
}

// GetResponseExportProgress checks an export job once.
func (c *Client) GetResponseExportProgress(ctx context.Context, surveyID, progressID string) (*ExportProgress, error) {
	if err := requireID("surveyId", surveyID); err != nil {
		return nil, err
	}
	if err := requireID("progressId", progressID); err != nil {
		return nil, err
	}

	req := c.newRequest(http.MethodGet, c.endpoint("surveys", surveyID, "export-responses", progressID), authLower, nil)
	progress, err := callResult[ExportProgress](ctx, c, req)
	if err != nil {
		return nil, err
	}
	if progress.Status == ExportComplete && progress.FileID == "" {
		return nil, &ProtocolError{Method: req.Method, URL: req.URL, Reason: "complete export has no fileId"}
	}
	return &progress, nil
}

// GetResponseExportFile downloads a finished export and decodes it into a
// table. The archive must hold a single file unless opts.Entry names one.
func (c *Client) GetResponseExportFile(ctx context.Context, surveyID, fileID string, opts FileOptions) (*table.Table, error) {
	if err := requireID("surveyId", surveyID); err != nil {
		return nil, err
	}
	if err := requireID("fileId", fileID); err != nil {
		return nil, err
	}
	comma, err := delimiterFor(opts.Format)
	if err != nil {
		return nil, err
	}

	req := c.newRequest(http.MethodGet, c.endpoint("surveys", surveyID, "export-responses", fileID, "file"), authLower, nil)
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		// Failed downloads still answer with an envelope
		if env, derr := decodeEnvelope(resp.Body); derr == nil && !env.OK() {
			return nil, env.apiError(resp.StatusCode)
		}
		return nil, &ProtocolError{Method: req.Method, URL: req.URL, StatusCode: resp.StatusCode, Reason: "export download failed", Body: snippet(resp.Body)}
	}

	payload, name, err := extractEntry(resp.Body, opts.Entry)
	if err != nil {
		return nil, err
	}

	t, err := table.ReadDelimited(bytes.NewReader(payload), table.ReadOptions{Comma: comma, SkipRows: exportMetadataRows})
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	c.logger.Debug().
		Str("survey_id", surveyID).
		Str("file", name).
		Int("rows", t.Len()).
		Msg("Decoded response export")

	return t, nil
}

// ExportResponses runs a complete export: it creates the job, waits
// PollInterval before every progress check until the job completes or
// fails, then downloads and decodes the file. Cancelling ctx or reaching
// its deadline at any point after the job is created, including during the
// download, ends the export with a *TimeoutError.
func (c *Client) ExportResponses(ctx context.Context, er ExportRequest) (*table.Table, error) {
	interval := er.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	fileOpts := er.File
	if fileOpts.Format == "" {
		fileOpts.Format = er.Options.Format
	}
	if _, err := delimiterFor(fileOpts.Format); err != nil {
		return nil, err
	}
	if er.Options.Format == "" {
		er.Options.Format = fileOpts.Format
	}
	if er.Options.Compress != nil && !*er.Options.Compress {
		return nil, &ValidationError{Field: "compress", Row: -1, Reason: "exports are downloaded as archives"}
	}

	progressID, err := c.CreateResponseExport(ctx, er.SurveyID, er.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to create export: %w", err)
	}

	polls := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, &TimeoutError{ProgressID: progressID, Polls: polls, Err: err}
		}

		timer := c.clock.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &TimeoutError{ProgressID: progressID, Polls: polls, Err: ctx.Err()}
		case <-timer.Chan():
		}

		polls++
		progress, err := c.GetResponseExportProgress(ctx, er.SurveyID, progressID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, &TimeoutError{ProgressID: progressID, Polls: polls, Err: ctxErr}
			}
			return nil, fmt.Errorf("failed to check export progress: %w", err)
		}

		c.logger.Debug().
			Str("progress_id", progressID).
			Int("poll", polls).
			Str("status", progress.Status).
			Float64("percent", progress.PercentComplete).
			Msg("Polled response export")

		if er.OnProgress != nil {
			er.OnProgress(*progress)
		}

		switch progress.Status {
		case ExportComplete:
			t, err := c.GetResponseExportFile(ctx, er.SurveyID, progress.FileID, fileOpts)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, &TimeoutError{ProgressID: progressID, Polls: polls, Err: ctxErr}
				}
				return nil, err
			}
			return t, nil
		case ExportFailed:
			return nil, &ExportFailedError{SurveyID: er.SurveyID, ProgressID: progressID, Status: progress.Status}
		case ExportInProgress:
		default:
			return nil, &ProtocolError{Reason: fmt.Sprintf("unknown export status %q", progress.Status)}
		}
	}
}

func delimiterFor(format string) (rune, error) {
	if format == "" {
		format = FormatCSV
	}
	comma, ok := tabularFormats[format]
	if !ok {
		return 0, &ValidationError{Field: "format", Row: -1, Reason: fmt.Sprintf("%q exports cannot be decoded into a table", format), Err: ErrUnsupportedFormat}
	}
	return comma, nil
}

// extractEntry reads one file from a zip archive held in memory.
func extractEntry(data []byte, entry string) ([]byte, string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	var files []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if entry != "" && f.Name != entry && path.Base(f.Name) != entry {
			continue
		}
		files = append(files, f)
	}

	switch {
	case len(files) == 0 && entry != "":
		return nil, "", fmt.Errorf("%w: no entry named %q", ErrInvalidArchive, entry)
	case len(files) == 0:
		return nil, "", fmt.Errorf("%w: archive is empty", ErrInvalidArchive)
	case len(files) > 1:
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = f.Name
		}
		return nil, "", fmt.Errorf("%w: %s", ErrAmbiguousArchive, strings.Join(names, ", "))
	}

	f := files[0]
	rc, err := f.Open()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrInvalidArchive, f.Name, err)
	}
	return buf.Bytes(), f.Name, nil
}

// IsTimeout reports whether err ended an export because its context expired.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
