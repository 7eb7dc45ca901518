package network

import (
	"context"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type putCall struct {
	input  *s3.PutObjectInput
	body   []byte
	region string
}

// fakeS3Client records PutObject calls. The multipart methods are only reached
// for files larger than one part, which the tests never create.
type fakeS3Client struct {
	mu       sync.Mutex
	calls    []putCall
	putErr   error
	headErrs []error
	heads    int
}

func (c *fakeS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	var opts s3.Options
	for _, fn := range optFns {
		fn(&opts)
	}

	c.mu.Lock()
	c.calls = append(c.calls, putCall{input: params, body: body, region: opts.Region})
	c.mu.Unlock()

	if c.putErr != nil {
		return nil, c.putErr
	}
	return &s3.PutObjectOutput{ETag: aws.String(`"etag"`), VersionId: aws.String("v1")}, nil
}

func (c *fakeS3Client) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return &s3.UploadPartOutput{ETag: aws.String(`"part"`)}, nil
}

func (c *fakeS3Client) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-id")}, nil
}

func (c *fakeS3Client) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return &s3.CompleteMultipartUploadOutput{ETag: aws.String(`"complete"`)}, nil
}

func (c *fakeS3Client) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}

func (c *fakeS3Client) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.heads
	c.heads++
	if idx < len(c.headErrs) && c.headErrs[idx] != nil {
		return nil, c.headErrs[idx]
	}
	return &s3.HeadBucketOutput{}, nil
}
