package repositories

import (
	"context"
	"fmt"
	"net/url"
)

type OpenOptions struct {
	// MongoDatabase is the database used for mongodb:// URLs
	MongoDatabase string
}

// Open creates the repository named by the scheme of connStr:
// sqlite://path, postgres(ql)://..., mongodb(+srv)://... or memory://.
func Open(ctx context.Context, connStr string, opts OpenOptions) (Repository, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %v", err)
	}

	switch u.Scheme {
	case "sqlite":
		path := u.Host + u.Path
		if path == "" {
			return nil, fmt.Errorf("sqlite connection string %q has no path", connStr)
		}
		repository, err := NewSQLiteRepository(ctx, SQLiteDriver, path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite repository: %v", err)
		}
		return repository, nil
	case "postgres", "postgresql":
		repository, err := NewPostgresRepository(ctx, u.String())
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres repository: %v", err)
		}
		return repository, nil
	case "mongodb", "mongodb+srv":
		database := opts.MongoDatabase
		if database == "" {
			database = "minimmo"
		}
		repository, err := NewMongoRepository(ctx, u.String(), database)
		if err != nil {
			return nil, fmt.Errorf("failed to create Mongo repository: %v", err)
		}
		return repository, nil
	case "memory":
		return NewInMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown database type %s", u.Scheme)
	}
}
