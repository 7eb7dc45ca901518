package deploy

import (
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/steps-dist-upload/deploy/network"
)

// fileLog prints the per-file lines; the log input turns them off.
type fileLog struct {
	logger  log.Logger
	enabled bool
}

func (l fileLog) excluded(path string) {
	if l.enabled {
		l.logger.Printf("Excluded: %s", path)
	}
}

func (l fileLog) uploaded(variant network.Variant, entry FileEntry) {
	if l.enabled {
		l.logger.Donef("%s succeeded: %s -> %s", variant, entry.LocalPath, entry.RemoteKey)
	}
}

func (l fileLog) failed(variant network.Variant, entry FileEntry, err error) {
	if l.enabled {
		l.logger.Errorf("%s failed: %s: %s", variant, entry.LocalPath, err)
	}
}

func (l fileLog) skipped(entry FileEntry) {
	l.logger.Debugf("Skipped after an earlier failure: %s", entry.LocalPath)
}
