package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/bbernstein/parentstops/internal/config"
	"github.com/bbernstein/parentstops/internal/handler"
	"github.com/bbernstein/parentstops/internal/publish"
	"github.com/bbernstein/parentstops/internal/station"
	"github.com/bbernstein/parentstops/internal/stops"
	"github.com/rs/zerolog/log"
)

var (
	lambdaStart  = lambda.Start // Allow mocking of lambda.Start in tests
	eventHandler *handler.S3EventHandler
	setupOnce    sync.Once
	initHandler  = defaultInitHandler
)

func defaultInitHandler(ctx context.Context, cfg *config.Config) (*handler.S3EventHandler, error) {
	pipeline, err := station.NewPipeline(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing pipeline: %w", err)
	}

	s3Client, err := stops.NewS3Client(ctx, cfg.S3Endpoint)
	if err != nil {
		pipeline.Close()
		return nil, fmt.Errorf("initializing S3 client: %w", err)
	}
	store := stops.NewStore(stops.WithS3Client(s3Client))

	var publisher publish.Publisher
	if cfg.DynamoTable != "" {
		dynamoClient, err := publish.NewDynamoClient(ctx, cfg.DynamoEndpoint)
		if err != nil {
			pipeline.Close()
			return nil, fmt.Errorf("initializing DynamoDB client: %w", err)
		}
		publisher = publish.NewDynamoPublisher(dynamoClient, cfg.DynamoTable)
	}

	return handler.NewS3EventHandler(store, pipeline, publisher, cfg.OutputPrefix), nil
}

func InitializeService() error {
	var initError error
	setupOnce.Do(func() {
		cfg := config.LoadFromEnv()
		cfg.InitializeLogging()

		log.Debug().Msg("Initializing enrichment service...")
		var err error
		eventHandler, err = initHandler(context.Background(), cfg)
		if err != nil {
			initError = fmt.Errorf("failed to initialize handler: %w", err)
			return
		}
		log.Debug().Msg("Enrichment service initialized successfully")
	})
	return initError
}

func handleRequest(ctx context.Context, event events.S3Event) (handler.Response, error) {
	if eventHandler == nil {
		return handler.Response{}, fmt.Errorf("handler not initialized")
	}
	return eventHandler.HandleEvent(ctx, event)
}

func main() {
	if err := InitializeService(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}
	lambdaStart(handleRequest)
}
