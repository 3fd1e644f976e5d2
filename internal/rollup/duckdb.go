package rollup

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcboeker/go-duckdb"
	"github.com/pdc-tracking/backend/internal/models"
)

// DuckOptions tunes the in-memory DuckDB instance.
type DuckOptions struct {
	Threads     int
	MemoryLimit string
}

// DuckEngine computes rollups in a throwaway in-memory DuckDB database. Each
// call opens its own database, so calls share nothing.
type DuckEngine struct {
	opts DuckOptions
}

// NewDuckEngine creates a DuckDB-backed engine.
func NewDuckEngine(opts DuckOptions) *DuckEngine {
	if opts.Threads <= 0 {
		opts.Threads = 2
	}
	if opts.MemoryLimit == "" {
		opts.MemoryLimit = "512MB"
	}
	return &DuckEngine{opts: opts}
}

func (e *DuckEngine) Name() string { return EngineDuckDB }

// Rollup loads the samples into a `samples` table with the Appender API and
// groups them by month and channel in SQL.
func (e *DuckEngine) Rollup(ctx context.Context, series ...models.ChannelSeries) (models.MonthlyRollup, error) {
	start := time.Now()

	db, err := e.open()
	if err != nil {
		return models.MonthlyRollup{}, err
	}
	defer db.Close()

	conn, err := db.Conn(ctx)
	if err != nil {
		return models.MonthlyRollup{}, fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `
		CREATE TABLE samples (
			channel VARCHAR   NOT NULL,
			ts      TIMESTAMP NOT NULL,
			value   DOUBLE    NOT NULL
		)
	`); err != nil {
		return models.MonthlyRollup{}, fmt.Errorf("failed to create table: %w", err)
	}

	rows := 0
	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", "samples")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		for _, s := range series {
			for _, p := range s.Points {
				if err := appender.AppendRow(string(s.Channel), p.Timestamp.UTC(), p.Value); err != nil {
					return fmt.Errorf("failed to append %s sample: %w", s.Channel, err)
				}
				rows++
			}
		}
		return appender.Flush()
	})
	if err != nil {
		return models.MonthlyRollup{}, fmt.Errorf("appender error: %w", err)
	}

	result, err := e.query(ctx, conn, channelOrder(series))
	if err != nil {
		return models.MonthlyRollup{}, err
	}

	slog.Debug("duckdb rollup complete", "samples", rows, "months", len(result.Rows), "elapsed", time.Since(start))
	return result, nil
}

func (e *DuckEngine) open() (*sql.DB, error) {
	connector, err := duckdb.NewConnector("", func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA threads=%d", e.opts.Threads),
			fmt.Sprintf("PRAGMA memory_limit='%s'", e.opts.MemoryLimit),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("%s: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}
	return sql.OpenDB(connector), nil
}

func (e *DuckEngine) query(ctx context.Context, conn *sql.Conn, channels []models.Channel) (models.MonthlyRollup, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT CAST(date_trunc('month', ts) AS TIMESTAMP) AS month, channel, avg(value)
		FROM samples
		GROUP BY 1, 2
		ORDER BY 1, 2
	`)
	if err != nil {
		return models.MonthlyRollup{}, fmt.Errorf("rollup query: %w", err)
	}
	defer rows.Close()

	out := models.MonthlyRollup{Channels: channels, Rows: make([]models.MonthlyRow, 0)}
	for rows.Next() {
		var (
			month   time.Time
			channel string
			mean    float64
		)
		if err := rows.Scan(&month, &channel, &mean); err != nil {
			return models.MonthlyRollup{}, fmt.Errorf("scanning rollup row: %w", err)
		}
		month = month.UTC()

		// Rows arrive ordered by month; one output row per distinct month.
		n := len(out.Rows)
		if n == 0 || !out.Rows[n-1].Month.Equal(month) {
			out.Rows = append(out.Rows, models.MonthlyRow{Month: month, Values: make(map[models.Channel]float64, len(channels))})
			n++
		}
		out.Rows[n-1].Values[models.Channel(channel)] = mean
	}
	return out, rows.Err()
}
