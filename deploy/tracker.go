package deploy

import (
	"time"

	"github.com/bitrise-io/go-utils/v2/analytics"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
	steptracker "github.com/bitrise-io/steps-dist-upload/analytics"
	"github.com/bitrise-io/steps-dist-upload/deploy/network"
)

// stepTracker sends the upload events. Without a step execution ID every event is dropped.
type stepTracker struct {
	tracker analytics.Tracker
	logger  log.Logger
}

func newStepTracker(envRepo env.Repository, logger log.Logger) stepTracker {
	tracker, err := steptracker.NewDefaultStepTracker(envRepo, logger)
	if err != nil {
		logger.Debugf("Analytics disabled: %s", err)
	}
	return stepTracker{tracker: tracker, logger: logger}
}

func (t stepTracker) logUploadFinished(uploadTime time.Duration, variant network.Variant, results []network.Result, concurrent int) {
	if t.tracker == nil {
		return
	}
	properties := analytics.Properties{
		"upload_time_s":     uploadTime.Truncate(time.Second).Seconds(),
		"upload_size_bytes": totalSize(results),
		"file_count":        len(results),
		"variant":           string(variant),
		"concurrent":        concurrent,
	}
	t.tracker.Enqueue("step_dist_upload_finished", properties)
}

func (t stepTracker) logUploadFailed(uploadTime time.Duration, variant network.Variant, err error) {
	if t.tracker == nil {
		return
	}
	properties := analytics.Properties{
		"upload_time_s": uploadTime.Truncate(time.Second).Seconds(),
		"variant":       string(variant),
		"error":         err.Error(),
	}
	t.tracker.Enqueue("step_dist_upload_failed", properties)
}

func (t stepTracker) wait() {
	if t.tracker == nil {
		return
	}
	t.tracker.Wait()
}
