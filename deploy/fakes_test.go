package deploy

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bitrise-io/steps-dist-upload/deploy/network"
	"github.com/stretchr/testify/require"
)

type fakeEnvRepo struct {
	envVars map[string]string
}

func (repo fakeEnvRepo) Get(key string) string {
	return repo.envVars[key]
}

func (repo fakeEnvRepo) Set(key, value string) error {
	repo.envVars[key] = value
	return nil
}

func (repo fakeEnvRepo) Unset(key string) error {
	delete(repo.envVars, key)
	return nil
}

func (repo fakeEnvRepo) List() []string {
	var values []string
	for k, v := range repo.envVars {
		values = append(values, k+"="+v)
	}
	return values
}

// fakeTransport counts calls and the number of calls in flight. Uploads of paths in
// failures fail at once; every other upload takes delay, or ends early when its
// context is cancelled.
type fakeTransport struct {
	variant  network.Variant
	failures map[string]error
	delay    time.Duration

	calls       atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	cancelled   atomic.Int32
}

func (f *fakeTransport) Variant() network.Variant {
	if f.variant == "" {
		return network.SimpleUpload
	}
	return f.variant
}

func (f *fakeTransport) Upload(ctx context.Context, req network.Request) (network.Result, error) {
	f.calls.Add(1)
	current := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if current <= peak || f.maxInFlight.CompareAndSwap(peak, current) {
			break
		}
	}

	if err, ok := f.failures[req.LocalPath]; ok {
		return network.Result{}, err
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			f.cancelled.Add(1)
			return network.Result{}, ctx.Err()
		}
	}

	return network.Result{
		Variant:   f.Variant(),
		Key:       req.Key,
		LocalPath: req.LocalPath,
		Size:      1,
		ETag:      `"` + req.Key + `"`,
	}, nil
}

// fakeS3Client serves the simple upload path of a Deployer run.
type fakeS3Client struct {
	mu       sync.Mutex
	keys     []string
	failKeys map[string]error
	heads    int
}

func (c *fakeS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if _, err := io.Copy(io.Discard, params.Body); err != nil {
		return nil, err
	}
	key := aws.ToString(params.Key)

	c.mu.Lock()
	c.keys = append(c.keys, key)
	c.mu.Unlock()

	if err, ok := c.failKeys[key]; ok {
		return nil, err
	}
	return &s3.PutObjectOutput{ETag: aws.String(`"etag-` + key + `"`)}, nil
}

func (c *fakeS3Client) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, errors.New("unexpected multipart upload")
}

func (c *fakeS3Client) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errors.New("unexpected multipart upload")
}

func (c *fakeS3Client) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errors.New("unexpected multipart upload")
}

func (c *fakeS3Client) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}

func (c *fakeS3Client) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	c.mu.Lock()
	c.heads++
	c.mu.Unlock()
	return &s3.HeadBucketOutput{}, nil
}

func (c *fakeS3Client) uploadedKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := append([]string(nil), c.keys...)
	sort.Strings(keys)
	return keys
}

type fakeExporter struct {
	outputs      map[string]string
	fileContents map[string]string
	exportErr    error
}

func newFakeExporter() *fakeExporter {
	return &fakeExporter{outputs: map[string]string{}, fileContents: map[string]string{}}
}

func (e *fakeExporter) ExportOutput(key, value string) error {
	if e.exportErr != nil {
		return e.exportErr
	}
	e.outputs[key] = value
	return nil
}

func (e *fakeExporter) ExportOutputList(key string, values []string) error {
	return e.ExportOutput(key, strings.Join(values, "\n"))
}

func (e *fakeExporter) ExportOutputFileContent(content, dst, envKey string) error {
	e.fileContents[dst] = content
	return e.ExportOutput(envKey, dst)
}

func writeFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		path := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("content of "+p), 0644))
	}
}

func newTestConfig(t *testing.T, input Input) Config {
	t.Helper()
	if input.Bucket == "" {
		input.Bucket = "bucket"
	}
	config, err := NewConfig(input)
	require.NoError(t, err)
	return config
}
