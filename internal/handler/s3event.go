package handler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bbernstein/parentstops/internal/models"
	"github.com/bbernstein/parentstops/internal/publish"
	"github.com/bbernstein/parentstops/internal/station"
	"github.com/rs/zerolog/log"
)

// TableStore loads and saves stop tables by location
type TableStore interface {
	LoadTable(ctx context.Context, location string) (*models.Table, error)
	SaveTable(ctx context.Context, location string, table *models.Table) error
}

type Enricher interface {
	Enrich(ctx context.Context, table *models.Table) (*station.Report, error)
}

// ObjectResult describes one processed upload
type ObjectResult struct {
	Input          string `json:"input"`
	Output         string `json:"output"`
	RunID          string `json:"runId"`
	Stops          int    `json:"stops"`
	ParentStations int    `json:"parentStations"`
	Ambiguous      int    `json:"ambiguousPrefixes"`
	FailedGroups   int    `json:"failedGroups"`
}

type Response struct {
	Processed []ObjectResult `json:"processed"`
	Skipped   []string       `json:"skipped,omitempty"`
}

// S3EventHandler enriches every stop table uploaded to a bucket and writes
// the result back under an output prefix.
type S3EventHandler struct {
	store        TableStore
	enricher     Enricher
	publisher    publish.Publisher
	outputPrefix string
}

// NewS3EventHandler creates the handler; publisher may be nil
func NewS3EventHandler(store TableStore, enricher Enricher, publisher publish.Publisher, outputPrefix string) *S3EventHandler {
	return &S3EventHandler{
		store:        store,
		enricher:     enricher,
		publisher:    publisher,
		outputPrefix: outputPrefix,
	}
}

// HandleEvent processes each record of the event. A failing record does not
// stop the others; the joined error makes Lambda retry the event.
func (h *S3EventHandler) HandleEvent(ctx context.Context, event events.S3Event) (Response, error) {
	var (
		resp Response
		errs []error
	)

	for _, record := range event.Records {
		bucket := record.S3.Bucket.Name
		key := objectKey(record.S3.Object)

		if h.isOutput(key) {
			log.Debug().Str("bucket", bucket).Str("key", key).Msg("Ignoring our own output")
			resp.Skipped = append(resp.Skipped, key)
			continue
		}

		result, err := h.process(ctx, bucket, key)
		if err != nil {
			log.Error().Err(err).Str("bucket", bucket).Str("key", key).Msg("Failed to enrich stop table")
			errs = append(errs, fmt.Errorf("s3://%s/%s: %w", bucket, key, err))
			continue
		}
		resp.Processed = append(resp.Processed, result)
	}

	return resp, errors.Join(errs...)
}

func (h *S3EventHandler) process(ctx context.Context, bucket, key string) (ObjectResult, error) {
	input := "s3://" + bucket + "/" + key
	output := "s3://" + bucket + "/" + h.OutputKey(key)

	table, err := h.store.LoadTable(ctx, input)
	if err != nil {
		return ObjectResult{}, err
	}

	report, err := h.enricher.Enrich(ctx, table)
	if err != nil {
		return ObjectResult{}, err
	}

	if h.publisher != nil && report.StationCount() > 0 {
		if err := h.publisher.Publish(ctx, report.RunID, report.ParentStations); err != nil {
			return ObjectResult{}, fmt.Errorf("publishing parent stations: %w", err)
		}
	}

	if err := h.store.SaveTable(ctx, output, table); err != nil {
		return ObjectResult{}, err
	}

	log.Info().Str("run_id", report.RunID).Str("input", input).Str("output", output).Msg("Enriched stop table")

	return ObjectResult{
		Input:          input,
		Output:         output,
		RunID:          report.RunID,
		Stops:          report.Stops,
		ParentStations: report.StationCount(),
		Ambiguous:      len(report.Ambiguous),
		FailedGroups:   len(report.Failures),
	}, nil
}

// OutputKey maps an uploaded key to where its enriched table is written:
// feeds/stops.txt becomes <prefix>feeds/modified_stops.txt.
func (h *S3EventHandler) OutputKey(key string) string {
	return path.Join(h.outputPrefix, path.Dir(key), "modified_"+path.Base(key))
}

func (h *S3EventHandler) isOutput(key string) bool {
	if strings.HasPrefix(path.Base(key), "modified_") {
		return true
	}
	prefix := strings.TrimSuffix(h.outputPrefix, "/")
	return prefix != "" && strings.HasPrefix(key, prefix+"/")
}

// objectKey prefers the decoded key; events built by hand may only carry
// the raw, URL-encoded one.
func objectKey(obj events.S3Object) string {
	if obj.URLDecodedKey != "" {
		return obj.URLDecodedKey
	}
	if decoded, err := url.QueryUnescape(obj.Key); err == nil {
		return decoded
	}
	return obj.Key
}
