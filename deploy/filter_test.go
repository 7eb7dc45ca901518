package deploy

import (
	"regexp"
	"testing"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/stretchr/testify/assert"
)

func TestFilter_DefaultPattern(t *testing.T) {
	filter := NewFilter(regexp.MustCompile(DefaultExclude), log.NewLogger(), true)

	tests := map[string]bool{
		"dist/a.js":          false,
		"dist/a.js.map":      true,
		"dist/index.html":    true,
		"dist/html/a.css":    false,
		"dist/page.html.txt": false,
		"dist/style.css.map": true,
	}
	for path, want := range tests {
		assert.Equal(t, want, filter.IsExcluded(path), path)
	}
}

func TestFilter_NoPattern(t *testing.T) {
	filter := NewFilter(nil, log.NewLogger(), false)

	assert.False(t, filter.IsExcluded("dist/index.html"))
}
