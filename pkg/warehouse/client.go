// Package warehouse executes generated SQL against the Spark SQL
// warehouse over the Databricks SQL driver.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbsql "github.com/databricks/databricks-sql-go"
	"go.uber.org/zap"
)

// QueryResult is the outcome of one warehouse call. Failures are
// carried in the result rather than raised, so one bad query never
// terminates a session.
type QueryResult struct {
	Success       bool
	Columns       []string
	Rows          [][]any
	RowCount      int
	ExecutionTime time.Duration
	ErrorMessage  string
}

// Executor is the warehouse call contract consumed by the CLI and
// tests.
type Executor interface {
	Execute(ctx context.Context, sqlQuery string, maxRows int) *QueryResult
}

// Config holds warehouse connection settings.
type Config struct {
	ServerHostname string
	HTTPPath       string
	AccessToken    string
	Timeout        time.Duration
}

// Client is the Databricks-backed Executor.
type Client struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClient opens a warehouse connection pool. Missing credentials are
// fatal misconfiguration.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg.ServerHostname == "" || cfg.HTTPPath == "" || cfg.AccessToken == "" {
		return nil, fmt.Errorf("warehouse credentials are required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}

	connector, err := dbsql.NewConnector(
		dbsql.WithServerHostname(cfg.ServerHostname),
		dbsql.WithHTTPPath(cfg.HTTPPath),
		dbsql.WithAccessToken(cfg.AccessToken),
		dbsql.WithTimeout(timeout),
		dbsql.WithUserAgentEntry("clinsight-engine"),
	)
	if err != nil {
		return nil, fmt.Errorf("create warehouse connector: %w", err)
	}

	return &Client{
		db:     sql.OpenDB(connector),
		logger: logger.Named("warehouse"),
	}, nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// Execute runs a SQL query and returns at most maxRows rows.
func (c *Client) Execute(ctx context.Context, sqlQuery string, maxRows int) *QueryResult {
	start := time.Now()

	rows, err := c.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return c.failure(sqlQuery, start, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return c.failure(sqlQuery, start, err)
	}

	var collected [][]any
	for rows.Next() {
		if maxRows > 0 && len(collected) >= maxRows {
			break
		}
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return c.failure(sqlQuery, start, err)
		}
		collected = append(collected, values)
	}
	if err := rows.Err(); err != nil {
		return c.failure(sqlQuery, start, err)
	}

	elapsed := time.Since(start)
	c.logger.Info("query executed",
		zap.Int("row_count", len(collected)),
		zap.Duration("elapsed", elapsed))

	return &QueryResult{
		Success:       true,
		Columns:       columns,
		Rows:          collected,
		RowCount:      len(collected),
		ExecutionTime: elapsed,
	}
}

func (c *Client) failure(sqlQuery string, start time.Time, err error) *QueryResult {
	elapsed := time.Since(start)
	message := ClassifyErrorMessage(err, elapsed)

	c.logger.Error("query failed",
		zap.String("query", truncate(sqlQuery, 500)),
		zap.Duration("elapsed", elapsed),
		zap.Error(err))

	return &QueryResult{
		Success:       false,
		ExecutionTime: elapsed,
		ErrorMessage:  message,
	}
}

// TestConnection runs a trivial query to verify connectivity.
func (c *Client) TestConnection(ctx context.Context) bool {
	return c.Execute(ctx, "SELECT 1 AS test", 1).Success
}

// TablePreview returns the first rows of a table.
func (c *Client) TablePreview(ctx context.Context, tableName string, limit int) *QueryResult {
	return c.Execute(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", tableName, limit), limit)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ClassifyErrorMessage maps common warehouse failure modes to messages
// that tell the caller what to fix.
func ClassifyErrorMessage(err error, elapsed time.Duration) string {
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out"):
		return fmt.Sprintf("connection timed out after %.1fs; the SQL warehouse may be stopped (detail: %v)", elapsed.Seconds(), err)
	case strings.Contains(msg, "CANNOT_PARSE_TIMESTAMP"):
		return fmt.Sprintf("date format error; wrap date columns in TRY_TO_DATE() (detail: %v)", err)
	case strings.Contains(msg, "MISSING_GROUP_BY") || strings.Contains(msg, "MISSING_AGGREGATION"):
		return fmt.Sprintf("aggregation error; GROUP BY clause is missing or incomplete (detail: %v)", err)
	case strings.Contains(msg, "INVALID_IDENTIFIER"):
		return fmt.Sprintf("column reference error; a referenced column does not exist or an alias is missing backticks (detail: %v)", err)
	default:
		return msg
	}
}

// Ensure Client implements Executor at compile time.
var _ Executor = (*Client)(nil)
