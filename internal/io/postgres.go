package io

import (
	"context"
	"errors"
	"fmt"
	"time"

	"acquire-tool/internal/logging"
	"acquire-tool/internal/util"

	"github.com/jackc/pgx/v5"
)

// pgxConnectFunc allows overriding pgx.Connect for testing.
var pgxConnectFunc = pgx.Connect

// Default database connection and query timeout.
const defaultDbTimeout = 30 * time.Second

// SourceResolver maps an opaque source name to a connection string. How the
// mapping happens (config file, environment, credential store) is the
// resolver's concern, not the fetcher's.
type SourceResolver func(sourceName string) (string, error)

// PostgresFetcher retrieves a dataset from a PostgreSQL source by executing a
// query against the connection resolved for a source name.
type PostgresFetcher struct {
	resolve SourceResolver
}

// NewPostgresFetcher creates a PostgresFetcher using the given resolver.
func NewPostgresFetcher(resolve SourceResolver) *PostgresFetcher {
	return &PostgresFetcher{resolve: resolve}
}

// Fetch resolves sourceName to a connection string, executes the query, and
// maps the result rows to records keyed by column name.
func (pf *PostgresFetcher) Fetch(sourceName, query string) ([]map[string]interface{}, error) {
	logging.Logf(logging.Debug, "PostgresFetcher fetching from source '%s' using query: %s", sourceName, query)

	if pf.resolve == nil {
		return nil, fmt.Errorf("PostgresFetcher has no source resolver configured")
	}
	connStr, err := pf.resolve(sourceName)
	if err != nil {
		return nil, fmt.Errorf("PostgresFetcher failed to resolve source '%s': %w", sourceName, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultDbTimeout*2)
	defer cancel()

	expandedConnStr := util.ExpandEnvUniversal(connStr)
	conn, err := pgxConnectFunc(ctx, expandedConnStr)
	if err != nil {
		maskedConnStr := util.MaskCredentials(expandedConnStr)
		logging.Logf(logging.Error, "PostgresFetcher failed to connect using connection string: %s", maskedConnStr)
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("PostgresFetcher database connection timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("PostgresFetcher failed to connect to database (using %s): %w", maskedConnStr, err)
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("PostgresFetcher query execution timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("PostgresFetcher failed to execute query '%s': %w", query, err)
	}
	defer rows.Close()

	fieldDescriptions := rows.FieldDescriptions()
	if len(fieldDescriptions) == 0 {
		logging.Logf(logging.Warning, "PostgresFetcher query '%s' returned no columns", query)
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("PostgresFetcher error after fetching zero field descriptions: %w", err)
		}
		return make([]map[string]interface{}, 0), nil
	}

	records := make([]map[string]interface{}, 0)
	for rows.Next() {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("PostgresFetcher database operation timed out or cancelled during row iteration: %w", ctx.Err())
		}

		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("PostgresFetcher failed to scan row values: %w", err)
		}

		recordMap := make(map[string]interface{}, len(fieldDescriptions))
		for i, fd := range fieldDescriptions {
			recordMap[string(fd.Name)] = values[i]
		}
		records = append(records, recordMap)
	}

	if err := rows.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("PostgresFetcher database operation timed out or cancelled after row iteration: %w", ctx.Err())
		}
		return nil, fmt.Errorf("PostgresFetcher error during row iteration: %w", err)
	}

	logging.Logf(logging.Info, "PostgresFetcher successfully loaded %d records from source '%s'", len(records), sourceName)
	return records, nil
}
