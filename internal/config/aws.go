package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/rs/zerolog/log"
)

// LoadAWSConfig loads the shared AWS configuration. When endpoint is set the
// clients talk to a local stand-in (localstack, MinIO, dynamodb-local) with
// static credentials; otherwise the default credential chain is used.
func LoadAWSConfig(ctx context.Context, endpoint string) (aws.Config, error) {
	if endpoint != "" {
		log.Debug().Str("endpoint", endpoint).Msg("Using local AWS endpoint")
		return awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion("local"),
			awsconfig.WithClientLogMode(aws.LogRetries),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
		)
	}

	return awsconfig.LoadDefaultConfig(ctx)
}
