// Command search-similar is the AWS Lambda entry point. Each invocation
// receives a query vector (a JSON array of numbers) and returns the nearest
// content ids as [{"id": ..., "distance": ...}].
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambda/messages"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hupe1980/searchsimilar"
	ddbsource "github.com/hupe1980/searchsimilar/attribute/dynamodb"
	"github.com/hupe1980/searchsimilar/blobstore"
	s3store "github.com/hupe1980/searchsimilar/blobstore/s3"
)

func main() {
	ctx := context.Background()

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		searchsimilar.NewLambdaLogger(slog.LevelInfo).Error("load aws config", "error", err)
		os.Exit(1)
	}

	s3Client := s3.NewFromConfig(awsCfg)
	ddbClient := dynamodb.NewFromConfig(awsCfg)

	fn := &function{
		lookup: os.LookupEnv,
		newStore: func(_ context.Context, bucket, basePath string) (blobstore.BlobStore, error) {
			return s3store.NewStore(s3Client, bucket, basePath), nil
		},
		newAttributeSource: func(table string) searchsimilar.AttributeSource {
			return ddbsource.NewSource(ddbClient, table)
		},
	}

	lambda.Start(fn.invoke)
}

// function holds the clients created once per cold start. Configuration is
// read again on every invocation.
type function struct {
	lookup             func(string) (string, bool)
	newStore           searchsimilar.StoreFactory
	newAttributeSource func(table string) searchsimilar.AttributeSource
}

func (f *function) invoke(ctx context.Context, vector []float32) ([]searchsimilar.Result, error) {
	cfg, cfgErr := searchsimilar.LoadConfig(f.lookup)

	logger := searchsimilar.NewLambdaLogger(cfg.LogLevel)
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.WithRequestID(lc.AwsRequestID)
	}

	if cfgErr != nil {
		logger.ErrorContext(ctx, "invalid configuration", "error", cfgErr)
		return nil, invokeError(cfgErr)
	}

	opener := searchsimilar.NewStoreOpener(f.newStore, func(o *searchsimilar.StoreOpenerOptions) {
		o.MaxConcurrentReads = cfg.MaxConcurrentReads
		o.MemoryLimitBytes = cfg.MemoryLimitBytes
		o.Logger = logger.Logger
	})

	opts := []searchsimilar.Option{searchsimilar.WithLogger(logger)}
	if cfg.AttributeTable != "" {
		opts = append(opts, searchsimilar.WithAttributeSource(f.newAttributeSource(cfg.AttributeTable)))
	}

	results, err := searchsimilar.New(cfg, opener, opts...).Handle(ctx, vector)
	if err != nil {
		return nil, invokeError(err)
	}
	return results, nil
}

// invokeError reports err to the Lambda runtime with its kind as error type.
func invokeError(err error) error {
	return messages.InvokeResponse_Error{
		Type:    searchsimilar.KindOf(err),
		Message: err.Error(),
	}
}
