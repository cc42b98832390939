package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bbernstein/parentstops/internal/config"
	"github.com/bbernstein/parentstops/internal/publish"
	"github.com/bbernstein/parentstops/internal/station"
	"github.com/bbernstein/parentstops/internal/stops"
	"github.com/bbernstein/parentstops/pkg/http/client"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
)

// errIncomplete marks a run that wrote its output but hit ambiguous
// prefixes or failed groups while --strict was set
var errIncomplete = errors.New("run completed with warnings")

type options struct {
	input      string
	output     string
	configFile string
	geojson    string
	sqlite     string
	strict     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errIncomplete):
		os.Exit(2)
	default:
		log.Error().Err(err).Msg("Enrichment failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("parentstops", flag.ContinueOnError)
	fs.SortFlags = false

	var opts options
	fs.StringVarP(&opts.input, "input", "i", "stops.txt", "stop table to read: a path, s3://bucket/key or http(s) URL")
	fs.StringVarP(&opts.output, "output", "o", "modified_stops.txt", "where to write the enriched table: a path or s3://bucket/key")
	fs.StringVarP(&opts.configFile, "config", "c", "", "optional YAML config file")
	fs.StringVar(&opts.geojson, "geojson", "", "also write the parent stations as GeoJSON to this location")
	fs.StringVar(&opts.sqlite, "sqlite", "", "also record the parent stations in this SQLite database")
	fs.BoolVar(&opts.strict, "strict", false, "exit with status 2 when prefixes are ambiguous or groups fail")
	threshold := fs.IntP("threshold", "t", 90, "minimum similarity score (0-100) for two prefixes to share a station")
	pattern := fs.String("pattern", "", "stop name pattern with two capture groups: prefix and platform code")
	fold := fs.Bool("fold-diacritics", false, "compare prefixes with accents removed")
	zone := fs.Int("utm-zone", 29, "UTM zone used to average coordinates")
	south := fs.Bool("utm-south", false, "use the southern hemisphere variant of the UTM zone")
	idPrefix := fs.String("id-prefix", "PS", "prefix of generated parent station IDs")
	dynamoTable := fs.String("dynamo-table", "", "also write the parent stations to this DynamoDB table")
	logLevel := fs.StringP("log-level", "l", "", "log level (trace, debug, info, warn, error)")
	env := fs.String("env", "", "environment; local or development enable console logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.LoadFromEnv()
	if opts.configFile != "" {
		fc, err := config.LoadFile(opts.configFile)
		if err != nil {
			return err
		}
		fc.Apply(cfg)
	}

	// flags given on the command line win over file and environment
	var overrides []config.Option
	if fs.Changed("threshold") {
		overrides = append(overrides, config.WithSimilarityThreshold(*threshold))
	}
	if fs.Changed("pattern") {
		overrides = append(overrides, config.WithPrefixPattern(*pattern))
	}
	if fs.Changed("fold-diacritics") {
		overrides = append(overrides, config.WithFoldDiacritics(*fold))
	}
	if fs.Changed("utm-zone") || fs.Changed("utm-south") {
		z, s := cfg.Projection.UTMZone, cfg.Projection.South
		if fs.Changed("utm-zone") {
			z = *zone
		}
		if fs.Changed("utm-south") {
			s = *south
		}
		overrides = append(overrides, config.WithUTMZone(z, s))
	}
	if fs.Changed("id-prefix") {
		overrides = append(overrides, config.WithStationIDPrefix(*idPrefix))
	}
	if fs.Changed("dynamo-table") {
		overrides = append(overrides, config.WithDynamo(*dynamoTable, cfg.DynamoEndpoint))
	}
	if fs.Changed("log-level") {
		overrides = append(overrides, config.WithLogLevel(*logLevel))
	}
	if fs.Changed("env") {
		overrides = append(overrides, config.WithEnvironment(*env))
	}
	for _, o := range overrides {
		o(cfg)
	}
	cfg.InitializeLogging()

	pipeline, err := station.NewPipeline(cfg)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	store, err := newStore(ctx, cfg, opts.input, opts.output, opts.geojson)
	if err != nil {
		return err
	}

	publishers, closeAll, err := newPublishers(ctx, cfg, store, opts)
	defer closeAll()
	if err != nil {
		return err
	}

	table, err := store.LoadTable(ctx, opts.input)
	if err != nil {
		return err
	}

	report, err := pipeline.Enrich(ctx, table)
	if err != nil {
		return err
	}

	// the enriched table is written last so a failed run leaves no output
	if len(publishers) > 0 && report.StationCount() > 0 {
		if err := publishers.Publish(ctx, report.RunID, report.ParentStations); err != nil {
			return fmt.Errorf("publishing parent stations: %w", err)
		}
	}

	if err := store.SaveTable(ctx, opts.output, table); err != nil {
		return err
	}

	if stats := pipeline.CacheStats(); stats != nil {
		log.Debug().Uint64("hits", stats["projection_hits"]).Uint64("misses", stats["projection_misses"]).Msg("Projection cache")
	}

	for _, a := range report.Ambiguous {
		fmt.Fprintf(stdout, "warning: %s\n", a)
	}
	for _, f := range report.Failures {
		fmt.Fprintf(stdout, "warning: no parent station for %s\n", f)
	}
	fmt.Fprintf(stdout, "Created %d parent stations from %d stops.\n", report.StationCount(), report.Stops)
	fmt.Fprintf(stdout, "Modified stops file saved as %s\n", opts.output)

	if opts.strict && (len(report.Ambiguous) > 0 || len(report.Failures) > 0) {
		return errIncomplete
	}
	return nil
}

// newStore only builds the clients the given locations need
func newStore(ctx context.Context, cfg *config.Config, locations ...string) (*stops.Store, error) {
	var storeOpts []stops.StoreOption
	needS3, needHTTP := false, false
	for _, l := range locations {
		switch {
		case strings.HasPrefix(l, "s3://"):
			needS3 = true
		case strings.HasPrefix(l, "http://"), strings.HasPrefix(l, "https://"):
			needHTTP = true
		}
	}

	if needS3 {
		s3Client, err := stops.NewS3Client(ctx, cfg.S3Endpoint)
		if err != nil {
			return nil, err
		}
		storeOpts = append(storeOpts, stops.WithS3Client(s3Client))
	}
	if needHTTP {
		storeOpts = append(storeOpts, stops.WithHTTPClient(client.New(client.Options{
			Timeout:    cfg.HTTPTimeout,
			MaxRetries: cfg.MaxRetries,
		})))
	}
	return stops.NewStore(storeOpts...), nil
}

func newPublishers(ctx context.Context, cfg *config.Config, store *stops.Store, opts options) (publish.Multi, func(), error) {
	var (
		publishers publish.Multi
		closers    []func() error
	)
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn().Err(err).Msg("Error closing publisher")
			}
		}
	}

	if opts.geojson != "" {
		publishers = append(publishers, publish.NewGeoJSONPublisher(store, opts.geojson))
	}
	if opts.sqlite != "" {
		db, err := publish.OpenSQLite(ctx, opts.sqlite)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, db.Close)
		publishers = append(publishers, db)
	}
	if cfg.DynamoTable != "" {
		dynamoClient, err := publish.NewDynamoClient(ctx, cfg.DynamoEndpoint)
		if err != nil {
			return nil, closeAll, err
		}
		publishers = append(publishers, publish.NewDynamoPublisher(dynamoClient, cfg.DynamoTable))
	}

	if len(publishers) > 0 {
		log.Debug().Str("publishers", publishers.Names()).Msg("Publishing enabled")
	}
	return publishers, closeAll, nil
}
