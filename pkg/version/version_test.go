package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	version, commit := Version, Commit
	t.Cleanup(func() { Version, Commit = version, commit })

	Version, Commit = "v1.2.0", ""
	assert.Equal(t, "v1.2.0", Get())

	Commit = "3f9c2ab"
	assert.Equal(t, "v1.2.0 (3f9c2ab)", Get())

	Version, Commit = "", ""
	assert.NotEmpty(t, Get())
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", coalesce("", "b", "c"))
	assert.Equal(t, "", coalesce("", ""))
}
