package deploy

import (
	"regexp"

	"github.com/bitrise-io/go-utils/v2/log"
)

// Filter decides which discovered files are left out of the upload.
type Filter struct {
	pattern *regexp.Regexp
	log     fileLog
}

// NewFilter ...
func NewFilter(pattern *regexp.Regexp, logger log.Logger, logEnabled bool) Filter {
	return Filter{pattern: pattern, log: fileLog{logger: logger, enabled: logEnabled}}
}

// IsExcluded reports whether path matches the exclude pattern.
func (f Filter) IsExcluded(path string) bool {
	if f.pattern == nil || !f.pattern.MatchString(path) {
		return false
	}
	f.log.excluded(path)
	return true
}
