package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresLogger stores timeline records in the timeline_entries table.
type PostgresLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresLogger(pool *pgxpool.Pool) *PostgresLogger {
	return &PostgresLogger{pool: pool}
}

func (l *PostgresLogger) LogNotesGenerated(courseRef, contentID, title, snippet, fullText string) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("timeline logger pool is nil")
	}
	entry, err := newEntry(courseRef, contentID, title, snippet, fullText)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	_, err = l.pool.Exec(ctx,
		`INSERT INTO timeline_entries (id, course_id, content_id, kind, title, snippet, full_text, created_at)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID,
		entry.CourseID,
		entry.ContentID,
		entry.Kind,
		entry.Title,
		entry.Snippet,
		entry.FullText,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert timeline entry: %w", err)
	}

	slog.Debug("timeline entry logged",
		"kind", entry.Kind,
		"course_id", entry.CourseID,
		"content_id", entry.ContentID,
	)
	return nil
}

func (l *PostgresLogger) Entries(courseID string) ([]Entry, error) {
	if l == nil || l.pool == nil {
		return nil, fmt.Errorf("timeline logger pool is nil")
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	rows, err := l.pool.Query(ctx,
		`SELECT id::text, course_id, content_id, kind, title, snippet, full_text, created_at
		 FROM timeline_entries
		 WHERE course_id = $1
		 ORDER BY created_at DESC`,
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("query timeline: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.CourseID, &e.ContentID, &e.Kind, &e.Title, &e.Snippet, &e.FullText, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan timeline entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline: %w", err)
	}
	return entries, nil
}
