package deploy

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/bitrise-io/steps-dist-upload/deploy/network"
	"github.com/bitrise-io/steps-dist-upload/stepconf"
)

const (
	DefaultRegion           = "ap-guangzhou"
	DefaultExclude          = `(\.map|\.html)$`
	DefaultConcurrent       = 50
	DefaultPrefix           = "upcos-prefix/"
	DefaultDistDir          = "dist"
	DefaultSliceSizeMB      = 8
	DefaultSliceConcurrency = 5
)

// Input is the information that comes from the step inputs.
type Input struct {
	AccessKeyID     stepconf.Secret `env:"access_key_id"`
	SecretAccessKey stepconf.Secret `env:"secret_access_key"`
	Bucket          string          `env:"bucket,required"`
	Region          string          `env:"region"`
	EndpointURL     string          `env:"endpoint_url"`
	ForcePathStyle  bool            `env:"force_path_style"`
	// Exclude is a regular expression matched against every discovered path.
	Exclude    string `env:"exclude"`
	Concurrent int    `env:"concurrent"`
	Prefix     string `env:"prefix"`
	DistDir    string `env:"dist_dir"`
	// Log is a pointer so that an unset input keeps per-file logging on.
	Log     *bool `env:"log"`
	Verbose bool  `env:"verbose"`

	SlicedUpload      bool `env:"sliced_upload"`
	SliceSizeMB       int  `env:"slice_size_mb"`
	SliceConcurrency  int  `env:"slice_concurrency"`
	LeavePartsOnError bool `env:"leave_parts_on_error"`

	CacheControl   string `env:"cache_control"`
	GzipPattern    string `env:"gzip_pattern"`
	PreflightCheck bool   `env:"preflight_check"`
}

// Credentials ...
type Credentials struct {
	AccessKeyID     stepconf.Secret
	SecretAccessKey stepconf.Secret
}

// Config is the resolved configuration of one upload run. Every default is filled in
// by NewConfig; the value is not modified afterwards.
type Config struct {
	Credentials  Credentials
	Bucket       string
	Region       string
	Endpoint     string
	UsePathStyle bool
	Exclude      *regexp.Regexp
	Concurrent   int
	// Prefix is already normalized, see NormalizePrefix.
	Prefix  string
	DistDir string
	Log     bool
	Verbose bool
	// Sliced is nil when every file is sent with a single PutObject.
	Sliced         *network.SlicedConfig
	Content        network.ContentOptions
	PreflightCheck bool
}

// NewConfig validates the input and resolves its defaults.
func NewConfig(input Input) (Config, error) {
	if strings.TrimSpace(input.Bucket) == "" {
		return Config{}, fmt.Errorf("bucket should not be empty")
	}

	if (input.AccessKeyID == "") != (input.SecretAccessKey == "") {
		return Config{}, fmt.Errorf("access_key_id and secret_access_key should be provided together")
	}

	region := input.Region
	if region == "" {
		region = DefaultRegion
	}

	excludePattern := input.Exclude
	if excludePattern == "" {
		excludePattern = DefaultExclude
	}
	exclude, err := regexp.Compile(excludePattern)
	if err != nil {
		return Config{}, fmt.Errorf("invalid exclude pattern: %w", err)
	}

	concurrent := input.Concurrent
	if concurrent == 0 {
		concurrent = DefaultConcurrent
	}
	if concurrent < 0 {
		return Config{}, fmt.Errorf("concurrent should be a positive number, got %d", concurrent)
	}

	distDir := input.DistDir
	if distDir == "" {
		distDir = DefaultDistDir
	}

	logEnabled := true
	if input.Log != nil {
		logEnabled = *input.Log
	}

	var sliced *network.SlicedConfig
	if input.SlicedUpload {
		sliced, err = slicedConfig(input)
		if err != nil {
			return Config{}, err
		}
	}

	content := network.ContentOptions{CacheControl: input.CacheControl}
	if input.GzipPattern != "" {
		content.Gzip, err = regexp.Compile(input.GzipPattern)
		if err != nil {
			return Config{}, fmt.Errorf("invalid gzip pattern: %w", err)
		}
	}

	return Config{
		Credentials: Credentials{
			AccessKeyID:     input.AccessKeyID,
			SecretAccessKey: input.SecretAccessKey,
		},
		Bucket:         input.Bucket,
		Region:         region,
		Endpoint:       input.EndpointURL,
		UsePathStyle:   input.ForcePathStyle,
		Exclude:        exclude,
		Concurrent:     concurrent,
		Prefix:         NormalizePrefix(input.Prefix),
		DistDir:        filepath.Clean(distDir),
		Log:            logEnabled,
		Verbose:        input.Verbose,
		Sliced:         sliced,
		Content:        content,
		PreflightCheck: input.PreflightCheck,
	}, nil
}

func slicedConfig(input Input) (*network.SlicedConfig, error) {
	sizeMB := input.SliceSizeMB
	if sizeMB == 0 {
		sizeMB = DefaultSliceSizeMB
	}
	partSize := int64(sizeMB) * 1024 * 1024
	if partSize < manager.MinUploadPartSize {
		return nil, fmt.Errorf("slice_size_mb should be at least %d", manager.MinUploadPartSize/1024/1024)
	}

	concurrency := input.SliceConcurrency
	if concurrency == 0 {
		concurrency = DefaultSliceConcurrency
	}
	if concurrency < 0 {
		return nil, fmt.Errorf("slice_concurrency should be a positive number, got %d", concurrency)
	}

	return &network.SlicedConfig{
		PartSize:          partSize,
		Concurrency:       concurrency,
		LeavePartsOnError: input.LeavePartsOnError,
	}, nil
}

func (c Config) clientParams() network.ClientParams {
	return network.ClientParams{
		Region:          c.Region,
		AccessKeyID:     string(c.Credentials.AccessKeyID),
		SecretAccessKey: string(c.Credentials.SecretAccessKey),
		Endpoint:        c.Endpoint,
		UsePathStyle:    c.UsePathStyle,
	}
}
