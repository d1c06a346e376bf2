package database

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/blogseed/internal/database/common"
)

type DatabaseAdapter interface {
	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error

	// Script execution
	ExecuteScript(ctx context.Context, script string) error
	ExecuteStatements(ctx context.Context, statements []string) error

	// Read queries for diagnostics
	ExecuteQuery(ctx context.Context, query string, args ...interface{}) (*common.QueryResult, error)
	PlaceholderFormat() squirrel.PlaceholderFormat
}
