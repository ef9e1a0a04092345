package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rocketscienceinc/pentago-client/internal/entity"
)

type ResultRepository interface {
	Record(ctx context.Context, session *entity.Session) error
	List(ctx context.Context, limit int) ([]entity.Result, error)
}

type resultRepository struct {
	conn *sql.DB
}

func NewResultRepository(conn *sql.DB) ResultRepository {
	return &resultRepository{
		conn: conn,
	}
}

// Record stores the outcome of a finished session. Recording the same game twice keeps the first row.
func (that *resultRepository) Record(ctx context.Context, session *entity.Session) error {
	query := `INSERT OR IGNORE INTO results (game_id, mode, human, winner, plies, finished_at) VALUES (?, ?, ?, ?, ?, ?)`

	result := session.Result()

	_, err := that.conn.ExecContext(ctx, query,
		result.GameID,
		string(result.Mode),
		string(result.Human),
		result.Winner,
		result.Plies,
		result.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("can't record result: %w", err)
	}

	return nil
}

// List returns the latest results first.
func (that *resultRepository) List(ctx context.Context, limit int) ([]entity.Result, error) {
	query := `SELECT game_id, mode, human, winner, plies, finished_at FROM results ORDER BY finished_at DESC, game_id LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("can't list results: %w", err)
	}
	defer rows.Close()

	results := make([]entity.Result, 0, limit)
	for rows.Next() {
		var (
			result                  entity.Result
			mode, human, finishedAt string
		)

		if err = rows.Scan(&result.GameID, &mode, &human, &result.Winner, &result.Plies, &finishedAt); err != nil {
			return nil, fmt.Errorf("can't scan result: %w", err)
		}

		if result.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
			return nil, fmt.Errorf("can't parse finish time: %w", err)
		}

		result.Mode = entity.Mode(mode)
		result.Human = entity.Side(human)
		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't iterate results: %w", err)
	}

	return results, nil
}
