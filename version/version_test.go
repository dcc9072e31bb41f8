package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.NotEmpty(t, info.CommitHash)
}

func TestGet_LdflagsWin(t *testing.T) {
	oldCommit, oldVersion := CommitHash, Version
	t.Cleanup(func() { CommitHash, Version = oldCommit, oldVersion })

	CommitHash = "0123456789abcdef"
	Version = "v1.4.0"

	info := Get()
	assert.Equal(t, "0123456789abcdef", info.CommitHash)
	assert.Equal(t, "0123456", info.Short())
	assert.Contains(t, info.String(), "docwatcher v1.4.0 (commit 0123456")
}

func TestShort_ShortHash(t *testing.T) {
	assert.Equal(t, "abc", Info{CommitHash: "abc"}.Short())
}
