package deploy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePrefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{prefix: "", want: "upcos-prefix/"},
		{prefix: "v1", want: "v1/"},
		{prefix: "v1/", want: "v1/"},
		{prefix: "/v1", want: "v1/"},
		{prefix: "/v1//", want: "v1/"},
		{prefix: "static/app", want: "static/app/"},
		{prefix: "/", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePrefix(tt.prefix))
		})
	}
}

func TestRemoteKey(t *testing.T) {
	tests := []struct {
		name      string
		localPath string
		root      string
		prefix    string
		want      string
	}{
		{name: "file in root", localPath: "dist/a.js", root: "dist", prefix: "v1", want: "v1/a.js"},
		{name: "nested file", localPath: "dist/assets/img/logo.png", root: "dist", prefix: "v1/", want: "v1/assets/img/logo.png"},
		{name: "default prefix", localPath: "dist/a.js", root: "dist", prefix: "", want: "upcos-prefix/a.js"},
		{name: "dot slash path", localPath: "./dist/a.js", root: "./dist/", prefix: "v1", want: "v1/a.js"},
		{name: "absolute root", localPath: "/tmp/build/dist/a.js", root: "/tmp/build/dist", prefix: "/cdn", want: "cdn/a.js"},
		{name: "path outside root", localPath: "other/a.js", root: "dist", prefix: "v1", want: "v1/other/a.js"},
		{name: "root is only a name prefix", localPath: "distribution/a.js", root: "dist", prefix: "v1", want: "v1/distribution/a.js"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoteKey(tt.localPath, tt.root, tt.prefix))
		})
	}
}

func TestRemoteKey_Idempotent(t *testing.T) {
	for _, prefix := range []string{"", "v1", "/v1/", "a/b"} {
		first := RemoteKey("dist/x/y.js", "dist", prefix)
		second := RemoteKey("dist/x/y.js", "dist", prefix)
		assert.Equal(t, first, second)
		assert.Equal(t, NormalizePrefix(prefix), NormalizePrefix(NormalizePrefix(prefix)))
	}
}

func TestRemoteKey_UniqueAndPrefixed(t *testing.T) {
	paths := []string{"dist/a.js", "dist/b/a.js", "dist/b/c/a.js", "dist/a.css", "dist/A.js"}
	prefix := NormalizePrefix("release")

	seen := map[string]string{}
	for _, p := range paths {
		key := RemoteKey(p, "dist", "release")
		assert.True(t, strings.HasPrefix(key, prefix), key)
		if other, ok := seen[key]; ok {
			t.Fatalf("%s and %s map to the same key %s", other, p, key)
		}
		seen[key] = p
	}
}
