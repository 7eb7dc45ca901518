package deploy

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-io/steps-dist-upload/deploy/network"
	"github.com/bitrise-io/steps-dist-upload/stepconf"
	"github.com/docker/go-units"
)

// Step outputs
const (
	FileCountOutputKey    = "DIST_UPLOAD_FILE_COUNT"
	KeysOutputKey         = "DIST_UPLOAD_KEYS"
	ManifestPathOutputKey = "DIST_UPLOAD_MANIFEST_PATH"

	manifestFileName = "dist-upload-manifest.txt"
)

// S3API is the subset of the S3 client used by a run.
type S3API interface {
	manager.UploadAPIClient
	network.HeadBucketAPI
}

// ClientFactory creates the S3 client of a run.
type ClientFactory func(ctx context.Context, params network.ClientParams, logger log.Logger) (S3API, error)

// DefaultClientFactory creates a real S3 client.
func DefaultClientFactory(ctx context.Context, params network.ClientParams, logger log.Logger) (S3API, error) {
	return network.NewS3Client(ctx, params, logger)
}

// OutputExporter exposes the step outputs to subsequent steps.
type OutputExporter interface {
	ExportOutput(key, value string) error
	ExportOutputList(key string, values []string) error
	ExportOutputFileContent(content, dst, envKey string) error
}

// Deployer uploads the build output directory described by the step inputs.
type Deployer struct {
	inputParser  stepconf.InputParser
	envRepo      env.Repository
	logger       log.Logger
	pathChecker  pathutil.PathChecker
	pathProvider pathutil.PathProvider
	exporter     OutputExporter
	newClient    ClientFactory
}

// NewDeployer ...
func NewDeployer(
	inputParser stepconf.InputParser,
	envRepo env.Repository,
	logger log.Logger,
	pathChecker pathutil.PathChecker,
	pathProvider pathutil.PathProvider,
	exporter OutputExporter,
	newClient ClientFactory,
) *Deployer {
	if newClient == nil {
		newClient = DefaultClientFactory
	}
	return &Deployer{
		inputParser:  inputParser,
		envRepo:      envRepo,
		logger:       logger,
		pathChecker:  pathChecker,
		pathProvider: pathProvider,
		exporter:     exporter,
		newClient:    newClient,
	}
}

// Deploy ...
func (d *Deployer) Deploy(ctx context.Context) error {
	d.logger.TDebugf("Deploy start")
	defer func() {
		d.logger.TDebugf("Deploy done")
	}()

	var input Input
	if err := d.inputParser.Parse(&input); err != nil {
		return err
	}
	stepconf.Print(input)
	d.logger.Println()
	d.logger.EnableDebugLog(input.Verbose)

	config, err := NewConfig(input)
	if err != nil {
		return fmt.Errorf("failed to parse inputs: %w", err)
	}
	d.logger.TDebugf("Config created")

	paths, err := Discover(config.DistDir, d.pathChecker)
	if err != nil {
		return err
	}
	d.logger.Printf("Found %d file(s) in %s", len(paths), config.DistDir)

	client, err := d.newClient(ctx, config.clientParams(), d.logger)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	d.logger.TDebugf("Client created")

	if config.PreflightCheck {
		d.logger.Infof("Checking bucket %s...", config.Bucket)
		if err := network.CheckBucket(ctx, client, config.Bucket, d.logger); err != nil {
			return err
		}
		d.logger.Donef("Bucket is reachable")
	}

	tracker := newStepTracker(d.envRepo, d.logger)
	defer tracker.wait()

	transport := network.SelectTransport(client, config.Sliced, config.Content)

	d.logger.Println()
	d.logger.Infof("Uploading to s3://%s/%s (%s, %d at a time)...", config.Bucket, config.Prefix, transport.Variant(), config.Concurrent)
	startTime := time.Now()
	outcome := NewOrchestrator(config, transport, d.logger).Run(ctx, paths)
	uploadTime := time.Since(startTime).Round(time.Millisecond)
	if outcome.Failed() {
		tracker.logUploadFailed(uploadTime, transport.Variant(), outcome.Err())
		d.logFailure(outcome.Err())
		return outcome.Err()
	}
	tracker.logUploadFinished(uploadTime, transport.Variant(), outcome.Results(), config.Concurrent)

	results := outcome.Results()
	d.logger.Donef("Uploaded %d file(s), %s in %s", len(results), units.HumanSizeWithPrecision(float64(totalSize(results)), 3), uploadTime)

	return d.exportOutputs(results)
}

func (d *Deployer) logFailure(err error) {
	var transportErr *network.TransportError
	if errors.As(err, &transportErr) {
		d.logger.Errorf("Failed file: %s", transportErr.LocalPath)
		if transportErr.Code != "" {
			d.logger.Errorf("Error code: %s", transportErr.Code)
		}
	}
}

func (d *Deployer) exportOutputs(results []network.Result) error {
	d.logger.Println()
	d.logger.Infof("Exporting outputs...")

	keys := make([]string, 0, len(results))
	var manifest strings.Builder
	for _, r := range results {
		keys = append(keys, r.Key)
		manifest.WriteString(r.Key + "\t" + r.ETag + "\n")
	}

	if err := d.exporter.ExportOutput(FileCountOutputKey, fmt.Sprintf("%d", len(results))); err != nil {
		return err
	}
	d.logger.Printf("%s: %d", FileCountOutputKey, len(results))

	if err := d.exporter.ExportOutputList(KeysOutputKey, keys); err != nil {
		return err
	}
	d.logger.Printf("%s: %d key(s)", KeysOutputKey, len(keys))

	manifestPath, err := d.manifestPath()
	if err != nil {
		return err
	}
	if err := d.exporter.ExportOutputFileContent(manifest.String(), manifestPath, ManifestPathOutputKey); err != nil {
		return err
	}
	d.logger.Printf("%s: %s", ManifestPathOutputKey, manifestPath)

	return nil
}

func (d *Deployer) manifestPath() (string, error) {
	dir := d.envRepo.Get("BITRISE_DEPLOY_DIR")
	if dir == "" {
		tmpDir, err := d.pathProvider.CreateTempDir("dist-upload")
		if err != nil {
			return "", fmt.Errorf("failed to create manifest directory: %w", err)
		}
		dir = tmpDir
	}
	return filepath.Join(dir, manifestFileName), nil
}

func totalSize(results []network.Result) int64 {
	var size int64
	for _, r := range results {
		size += r.Size
	}
	return size
}
