package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// The Postgres and Mongo backends run the shared suite only when a server is provided.

func TestPostgresRepository(t *testing.T) {
	connStr := os.Getenv("MINIMMO_TEST_POSTGRES_URL")
	if connStr == "" {
		t.Skip("MINIMMO_TEST_POSTGRES_URL not set")
	}
	testRepository(t, func(t *testing.T) Repository {
		repository, err := NewPostgresRepository(context.Background(), connStr)
		require.NoError(t, err)
		t.Cleanup(func() {
			repository.Close(context.Background())
		})
		return repository
	})
}

func TestMongoRepository(t *testing.T) {
	uri := os.Getenv("MINIMMO_TEST_MONGO_URL")
	if uri == "" {
		t.Skip("MINIMMO_TEST_MONGO_URL not set")
	}
	testRepository(t, func(t *testing.T) Repository {
		repository, err := NewMongoRepository(context.Background(), uri, "minimmo_test")
		require.NoError(t, err)
		t.Cleanup(func() {
			repository.Close(context.Background())
		})
		return repository
	})
}
