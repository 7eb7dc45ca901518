package deploy

import (
	"context"
	"fmt"
	"sync"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/steps-dist-upload/deploy/network"
	"github.com/panjf2000/ants/v2"
)

// Orchestrator runs one upload of a list of discovered files.
type Orchestrator struct {
	config    Config
	transport network.Transport
	logger    log.Logger
}

// NewOrchestrator ...
func NewOrchestrator(config Config, transport network.Transport, logger log.Logger) *Orchestrator {
	return &Orchestrator{config: config, transport: transport, logger: logger}
}

// Run filters and maps the paths, splits them into groups of Config.Concurrent files and
// uploads every group at once. At most Config.Concurrent transport calls are in flight
// across all groups. The first failure cancels the remaining calls and becomes the
// outcome of the whole run.
func (o *Orchestrator) Run(ctx context.Context, paths []string) Outcome {
	groups := partition(o.entries(paths), o.config.Concurrent)
	if len(groups) == 0 {
		o.logger.Debugf("Nothing to upload")
		return succeeded(nil)
	}
	o.logger.Debugf("Uploading in %d group(s) of at most %d files", len(groups), o.config.Concurrent)

	pool, err := ants.NewPool(o.config.Concurrent)
	if err != nil {
		return failed(fmt.Errorf("create upload pool: %w", err))
	}
	defer pool.Release()

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	failure := &firstFailure{cancel: cancel}
	uploader := groupUploader{
		transport: o.transport,
		pool:      pool,
		bucket:    o.config.Bucket,
		region:    o.config.Region,
		log:       fileLog{logger: o.logger, enabled: o.config.Log},
		failure:   failure,
	}

	groupResults := make([][]network.Result, len(groups))
	var wg sync.WaitGroup
	for i, group := range groups {
		wg.Add(1)
		go func() {
			defer wg.Done()

			results, err := uploader.upload(runCtx, i, group)
			if err != nil {
				o.logger.Debugf("Group %d failed: %s", i+1, err)
				return
			}
			groupResults[i] = results
		}()
	}
	wg.Wait()

	if failure.err != nil {
		return failed(&AggregateError{Group: failure.group, Groups: len(groups), Err: failure.err})
	}

	var results []network.Result
	for _, r := range groupResults {
		results = append(results, r...)
	}
	return succeeded(results)
}

func (o *Orchestrator) entries(paths []string) []FileEntry {
	filter := NewFilter(o.config.Exclude, o.logger, o.config.Log)

	var entries []FileEntry
	for _, path := range paths {
		if filter.IsExcluded(path) {
			continue
		}
		entries = append(entries, FileEntry{
			LocalPath: path,
			RemoteKey: o.config.Prefix + stripRoot(path, o.config.DistDir),
		})
	}
	return entries
}
