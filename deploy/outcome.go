package deploy

import (
	"fmt"

	"github.com/bitrise-io/steps-dist-upload/deploy/network"
)

// AggregateError is the failure of a whole run. It wraps the first failure observed;
// every other result of the run is discarded.
type AggregateError struct {
	// Group is the index of the group the failed file belonged to.
	Group  int
	Groups int
	Err    error
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("upload failed in group %d of %d: %s", e.Group+1, e.Groups, e.Err)
}

func (e *AggregateError) Unwrap() error {
	return e.Err
}

// Outcome is the result of one run: the results of every uploaded file, or a single failure.
type Outcome struct {
	results []network.Result
	err     error
}

func succeeded(results []network.Result) Outcome {
	if results == nil {
		results = []network.Result{}
	}
	return Outcome{results: results}
}

func failed(err error) Outcome {
	return Outcome{err: err}
}

// Failed ...
func (o Outcome) Failed() bool {
	return o.err != nil
}

// Results is nil for a failed run.
func (o Outcome) Results() []network.Result {
	return o.results
}

// Err is an *AggregateError for a failed run, nil otherwise.
func (o Outcome) Err() error {
	return o.err
}
