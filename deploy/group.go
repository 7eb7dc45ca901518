package deploy

import (
	"context"
	"fmt"
	"sync"

	"github.com/bitrise-io/steps-dist-upload/deploy/network"
	"github.com/panjf2000/ants/v2"
)

// firstFailure keeps the first error of a run and cancels the run when it is recorded.
type firstFailure struct {
	once   sync.Once
	err    error
	group  int
	cancel context.CancelCauseFunc
}

func (f *firstFailure) record(group int, err error) {
	f.once.Do(func() {
		f.err = err
		f.group = group
		f.cancel(err)
	})
}

// groupUploader uploads the entries of one group through the run's shared worker pool.
type groupUploader struct {
	transport network.Transport
	pool      *ants.Pool
	bucket    string
	region    string
	log       fileLog
	failure   *firstFailure
}

// upload waits for every entry of the group to settle. It returns the results in entry
// order, or the first error any entry of the group failed with.
func (g groupUploader) upload(ctx context.Context, index int, group Group) ([]network.Result, error) {
	results := make([]network.Result, len(group))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		groupErr error
	)
	fail := func(err error) {
		mu.Lock()
		if groupErr == nil {
			groupErr = err
		}
		mu.Unlock()
		g.failure.record(index, err)
	}

	for i, entry := range group {
		wg.Add(1)
		err := g.pool.Submit(func() {
			defer wg.Done()

			result, err := g.uploadFile(ctx, entry)
			if err != nil {
				fail(err)
				return
			}
			results[i] = result
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("schedule upload of %s: %w", entry.LocalPath, err))
			break
		}
	}
	wg.Wait()

	if groupErr != nil {
		return nil, groupErr
	}
	return results, nil
}

func (g groupUploader) uploadFile(ctx context.Context, entry FileEntry) (network.Result, error) {
	if ctx.Err() != nil {
		g.log.skipped(entry)
		return network.Result{}, fmt.Errorf("upload of %s skipped: %w", entry.LocalPath, context.Cause(ctx))
	}

	variant := g.transport.Variant()
	result, err := g.transport.Upload(ctx, network.Request{
		Bucket:    g.bucket,
		Region:    g.region,
		Key:       entry.RemoteKey,
		LocalPath: entry.LocalPath,
	})
	if err != nil {
		g.log.failed(variant, entry, err)
		return network.Result{}, err
	}

	g.log.uploaded(variant, entry)
	return result, nil
}
