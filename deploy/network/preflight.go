package network

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/bitrise-io/go-utils/retry"
	"github.com/bitrise-io/go-utils/v2/log"
)

const numPreflightRetries = 2

var preflightWait = 3 * time.Second

// HeadBucketAPI ...
type HeadBucketAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// CheckBucket verifies that the bucket exists and the credentials can reach it.
// Missing buckets and denied access are reported without retrying.
func CheckBucket(ctx context.Context, client HeadBucketAPI, bucket string, logger log.Logger) error {
	if bucket == "" {
		return fmt.Errorf("bucket must not be empty")
	}

	return retry.Times(numPreflightRetries).Wait(preflightWait).TryWithAbort(func(attempt uint) (error, bool) {
		_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
			Bucket: aws.String(bucket),
		})
		if err == nil {
			return nil, true
		}

		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return fmt.Errorf("bucket %s not found: %w", bucket, err), true
		}

		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "Forbidden", "AccessDenied":
				return fmt.Errorf("access to bucket %s denied: %w", bucket, err), true
			}
		}

		if ctx.Err() != nil {
			return fmt.Errorf("check bucket: %w", err), true
		}

		logger.Warnf("Bucket check attempt %d failed: %s", attempt+1, err)
		return fmt.Errorf("check bucket: %w", err), false
	})
}
