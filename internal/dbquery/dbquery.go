// Package dbquery executes ad-hoc SQL against caller-supplied databases.
// Every call opens its own connection and closes it before returning;
// nothing is pooled or shared across requests.
package dbquery

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

const (
	connectTimeout = 5 * time.Second
	queryTimeout   = 30 * time.Second
)

// Executor runs one query against one connection URI.
type Executor struct{}

// NewExecutor creates an Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute connects to connectionURI, runs query with params, and returns
// the rows as JSON-friendly maps. The connection is closed on return.
func (e *Executor) Execute(ctx context.Context, connectionURI, query string, params []any) ([]map[string]any, error) {
	if _, err := url.Parse(connectionURI); err != nil {
		return nil, fmt.Errorf("invalid connection URI: %w", err)
	}

	db, err := sql.Open("postgres", connectionURI)
	if err != nil {
		return nil, friendlyError(err)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, friendlyError(err)
	}

	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.QueryContext(queryCtx, query, params...)
	if err != nil {
		return nil, friendlyError(err)
	}
	defer rows.Close()

	return collectRows(rows)
}

// collectRows converts sql.Rows into a slice of column-name maps.
func collectRows(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	results := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			// Drivers return []byte for text-ish columns; strings
			// serialize cleanly, raw bytes do not.
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return results, nil
}

// friendlyError maps common connection failures to messages a caller can
// act on without seeing driver internals.
func friendlyError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return fmt.Errorf("connection refused: check that the database is running and the connection details are correct")
	case strings.Contains(msg, "no such host"):
		return fmt.Errorf("host not found: check the hostname in the connection URI")
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return fmt.Errorf("connection timed out: check that the database is accessible")
	default:
		return err
	}
}
