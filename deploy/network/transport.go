// Package network uploads single build output files to an S3-compatible object store.
// Two transport variants exist: a single-shot PutObject and a multipart (sliced) upload.
package network

import (
	"context"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
)

// Variant names the upload method a transport uses. The value is used in log lines.
type Variant string

const (
	// SimpleUpload sends the whole file in one PutObject request.
	SimpleUpload Variant = "upload"
	// SlicedUpload sends the file as a multipart upload.
	SlicedUpload Variant = "sliced upload"
)

// Request describes one file upload.
type Request struct {
	Bucket    string
	Region    string
	Key       string
	LocalPath string
}

// Result is the success payload of one file upload.
type Result struct {
	Variant   Variant
	Key       string
	LocalPath string
	// Size is the number of bytes sent, after optional compression.
	Size      int64
	ETag      string
	VersionID string
	Location  string
}

// Transport performs one file's upload. Implementations must honour ctx cancellation.
type Transport interface {
	Variant() Variant
	Upload(ctx context.Context, req Request) (Result, error)
}

// SlicedConfig configures the multipart upload variant.
type SlicedConfig struct {
	PartSize          int64
	Concurrency       int
	LeavePartsOnError bool
}

// ContentOptions are applied to every uploaded object regardless of the variant.
type ContentOptions struct {
	CacheControl string
	// Gzip selects the files that are compressed before sending. Nil disables compression.
	Gzip *regexp.Regexp
}

// SelectTransport returns the sliced transport when a sliced configuration is given,
// the simple one otherwise. The choice applies to every file of a run.
func SelectTransport(client manager.UploadAPIClient, sliced *SlicedConfig, content ContentOptions) Transport {
	if sliced != nil {
		return newSlicedUploader(client, *sliced, content)
	}
	return newSimpleUploader(client, content)
}
