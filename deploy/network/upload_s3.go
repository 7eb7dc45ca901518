package network

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the part of the S3 client the simple upload uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type simpleUploader struct {
	client  PutObjectAPI
	content ContentOptions
}

func newSimpleUploader(client PutObjectAPI, content ContentOptions) *simpleUploader {
	return &simpleUploader{client: client, content: content}
}

func (u *simpleUploader) Variant() Variant {
	return SimpleUpload
}

func (u *simpleUploader) Upload(ctx context.Context, req Request) (Result, error) {
	body, err := openBody(req.LocalPath, u.content)
	if err != nil {
		return Result{}, newTransportError(SimpleUpload, req, err)
	}
	defer body.Close() //nolint:errcheck

	out, err := u.client.PutObject(ctx, putObjectInput(req, body, u.content), withRegion(req.Region))
	if err != nil {
		return Result{}, newTransportError(SimpleUpload, req, err)
	}

	return Result{
		Variant:   SimpleUpload,
		Key:       req.Key,
		LocalPath: req.LocalPath,
		Size:      body.size,
		ETag:      aws.ToString(out.ETag),
		VersionID: aws.ToString(out.VersionId),
	}, nil
}

func putObjectInput(req Request, body *objectBody, content ContentOptions) *s3.PutObjectInput {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(req.Bucket),
		Key:           aws.String(req.Key),
		Body:          body.reader,
		ContentLength: aws.Int64(body.size),
		ContentType:   aws.String(body.contentType),
	}
	if body.contentEncoding != "" {
		input.ContentEncoding = aws.String(body.contentEncoding)
	}
	if content.CacheControl != "" {
		input.CacheControl = aws.String(content.CacheControl)
	}
	return input
}

// withRegion overrides the client region for a single call.
func withRegion(region string) func(*s3.Options) {
	return func(o *s3.Options) {
		if region != "" {
			o.Region = region
		}
	}
}
