package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bbernstein/parentstops/internal/config"
	"github.com/bbernstein/parentstops/internal/models"
	"github.com/rs/zerolog/log"
)

// DynamoDB caps a BatchWriteItem call at 25 requests
const maxBatchSize = 25

// DynamoDBClient is the slice of the DynamoDB API the publisher uses
type DynamoDBClient interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// NewDynamoClient creates a new DynamoDB client based on environment
func NewDynamoClient(ctx context.Context, endpoint string) (*dynamodb.Client, error) {
	cfg, err := config.LoadAWSConfig(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	if endpoint == "" {
		return dynamodb.NewFromConfig(cfg), nil
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	}), nil
}

// DynamoPublisher writes parent stations to a DynamoDB table keyed by stationId
type DynamoPublisher struct {
	client     DynamoDBClient
	tableName  string
	maxRetries int
	backoff    time.Duration
	now        func() time.Time
}

func NewDynamoPublisher(client DynamoDBClient, tableName string) *DynamoPublisher {
	return &DynamoPublisher{
		client:     client,
		tableName:  tableName,
		maxRetries: 3,
		backoff:    100 * time.Millisecond,
		now:        time.Now,
	}
}

func (p *DynamoPublisher) Publish(ctx context.Context, runID string, stations []models.StopRecord) error {
	records, err := NewStationRecords(runID, stations, p.now().Unix())
	if err != nil {
		return err
	}

	for i := 0; i < len(records); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(records) {
			end = len(records)
		}

		writeRequests := make([]types.WriteRequest, 0, end-i)
		for _, record := range records[i:end] {
			item, err := attributevalue.MarshalMap(record)
			if err != nil {
				return fmt.Errorf("marshaling station record: %w", err)
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := p.writeBatch(ctx, writeRequests); err != nil {
			return err
		}
	}

	log.Debug().Str("run_id", runID).Str("table", p.tableName).Int("station_count", len(records)).Msg("Published parent stations to DynamoDB")
	return nil
}

// writeBatch sends one batch, resending unprocessed items with exponential backoff
func (p *DynamoPublisher) writeBatch(ctx context.Context, pending []types.WriteRequest) error {
	var lastErr error
	for retry := 0; retry <= p.maxRetries; retry++ {
		if retry > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(1<<(retry-1)) * p.backoff):
			}
		}

		out, err := p.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				p.tableName: pending,
			},
		})
		if err != nil {
			lastErr = err
			continue
		}

		if out == nil {
			return nil
		}
		pending = out.UnprocessedItems[p.tableName]
		if len(pending) == 0 {
			return nil
		}
		lastErr = fmt.Errorf("%d items unprocessed", len(pending))
	}

	return fmt.Errorf("batch writing parent stations after %d retries: %w", p.maxRetries, lastErr)
}
