package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionStrings(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, Revision)

	assert.Contains(t, Short(), Version)
	assert.True(t, strings.HasPrefix(ShortWithApp(), AppName+" "))
	assert.Contains(t, Detailed(), "/")
	assert.True(t, strings.HasPrefix(DetailedWithApp(), AppName+" "))
}

func TestFillFromBuildInfo(t *testing.T) {
	oldVersion, oldRevision, oldDate := Version, Revision, BuildDate
	t.Cleanup(func() { Version, Revision, BuildDate = oldVersion, oldRevision, oldDate })

	Version, Revision, BuildDate = devVersion, "HEAD", ""
	fillFromBuildInfo("v1.2.3", map[string]string{
		"vcs.revision": "abc123",
		"vcs.modified": "true",
		"vcs.time":     "2025-01-01T00:00:00Z",
	})

	assert.Equal(t, "1.2.3", Version)
	assert.Equal(t, "abc123-dirty", Revision)
	assert.Equal(t, "2025-01-01T00:00:00Z", BuildDate)
}

func TestFillFromBuildInfo_KeepsLdflags(t *testing.T) {
	oldVersion, oldRevision := Version, Revision
	t.Cleanup(func() { Version, Revision = oldVersion, oldRevision })

	Version, Revision = "9.9.9", "release"
	fillFromBuildInfo("(devel)", map[string]string{"vcs.revision": "abc"})

	assert.Equal(t, "9.9.9", Version)
	assert.Equal(t, "release", Revision)
}
