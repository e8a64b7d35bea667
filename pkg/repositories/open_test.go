package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	repository, err := Open(ctx, "memory://", OpenOptions{})
	require.NoError(t, err)
	assert.IsType(t, &InMemoryRepository{}, repository)

	_, err = Open(ctx, "redis://localhost:6379", OpenOptions{})
	assert.ErrorContains(t, err, "unknown database type redis")

	_, err = Open(ctx, "sqlite://", OpenOptions{})
	assert.Error(t, err)

	_, err = Open(ctx, "://nope", OpenOptions{})
	assert.Error(t, err)
}
