package network

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// TransportError is returned when a single file upload fails.
type TransportError struct {
	Variant   Variant
	Bucket    string
	Key       string
	LocalPath string
	// Code is the S3 API error code, empty for non-API failures (network, local IO).
	Code string
	Err  error
}

func newTransportError(variant Variant, req Request, err error) *TransportError {
	e := &TransportError{
		Variant:   variant,
		Bucket:    req.Bucket,
		Key:       req.Key,
		LocalPath: req.LocalPath,
		Err:       err,
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		e.Code = apiErr.ErrorCode()
	}
	return e
}

func (e *TransportError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s of %s to s3://%s/%s failed (%s): %s", e.Variant, e.LocalPath, e.Bucket, e.Key, e.Code, e.Err)
	}
	return fmt.Sprintf("%s of %s to s3://%s/%s failed: %s", e.Variant, e.LocalPath, e.Bucket, e.Key, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
