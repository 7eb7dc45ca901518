package analytics

import (
	"fmt"

	"github.com/bitrise-io/go-utils/v2/analytics"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
)

// TrackerFactory ...
type TrackerFactory func(log.Logger, ...analytics.Properties) analytics.Tracker

const (
	StepExecutionIDEnvKey = "BITRISE_STEP_EXECUTION_ID"
	StepExecutionID       = "step_execution_id"
)

// StepProperties are the build level properties attached to every event of a step execution.
func StepProperties(repository env.Repository) analytics.Properties {
	return analytics.Properties{
		"build_slug":  repository.Get("BITRISE_BUILD_SLUG"),
		"app_slug":    repository.Get("BITRISE_APP_SLUG"),
		"workflow":    repository.Get("BITRISE_TRIGGERED_WORKFLOW_ID"),
		"is_pr_build": repository.Get("IS_PR") == "true",
	}
}

// NewStepTracker returns a tracker that tags every event with the current step execution.
func NewStepTracker(repository env.Repository, logger log.Logger, trackerFactory TrackerFactory) (analytics.Tracker, error) {
	stepExecutionID := repository.Get(StepExecutionIDEnvKey)
	if stepExecutionID == "" {
		return nil, fmt.Errorf("no step execution ID found")
	}
	return trackerFactory(logger, analytics.Properties{StepExecutionID: stepExecutionID}, StepProperties(repository)), nil
}

// NewDefaultStepTracker ...
func NewDefaultStepTracker(repository env.Repository, logger log.Logger) (analytics.Tracker, error) {
	return NewStepTracker(repository, logger, analytics.NewDefaultTracker)
}
