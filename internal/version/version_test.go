package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, runtime.GOOS)
	assert.Contains(t, info.Platform, runtime.GOARCH)
}

func TestString(t *testing.T) {
	s := String()

	assert.True(t, strings.Contains(s, ApplicationName))
	assert.True(t, strings.Contains(s, "version"))
}

func TestShort(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	Version = "1.0.0"
	assert.Equal(t, "1.0.0", Short())
}

func TestShortWithCommit(t *testing.T) {
	originalVersion, originalCommit := Version, Commit
	defer func() { Version, Commit = originalVersion, originalCommit }()

	Version = "1.0.0"
	Commit = "abc123def456789"
	assert.Equal(t, "1.0.0 (abc123de)", Short())
}
