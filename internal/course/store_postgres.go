package course

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store implementation.
// Attached files are kept as an ordered JSONB array on the course row.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed course store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Create(c Course) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	files, err := encodeFiles(c.Files)
	if err != nil {
		return err
	}

	cmd, err := s.pool.Exec(ctx,
		`INSERT INTO courses (id, name, description, files)
		 VALUES ($1, $2, $3, $4::jsonb)
		 ON CONFLICT (id) DO NOTHING`,
		c.ID,
		c.Name,
		c.Description,
		files,
	)
	if err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, c.ID)
	}
	return nil
}

func (s *PostgresStore) Update(c Course) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	files, err := encodeFiles(c.Files)
	if err != nil {
		return err
	}

	cmd, err := s.pool.Exec(ctx,
		`UPDATE courses
		 SET name = $2, description = $3, files = $4::jsonb, updated_at = NOW()
		 WHERE id = $1`,
		c.ID,
		c.Name,
		c.Description,
		files,
	)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, c.ID)
	}
	return nil
}

func (s *PostgresStore) FindByID(id string) (*Course, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx,
		`SELECT id, name, description, files
		 FROM courses
		 WHERE id = $1`,
		id,
	)
	c, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) FindAll() ([]Course, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, files
		 FROM courses
		 ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	courses := []Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}
	return courses, nil
}

func (s *PostgresStore) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if _, err := s.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

func scanCourse(row pgx.Row) (*Course, error) {
	c := &Course{}
	var filesBytes []byte
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &filesBytes); err != nil {
		return nil, err
	}
	files, err := decodeFiles(filesBytes)
	if err != nil {
		return nil, err
	}
	c.Files = files
	return c, nil
}

func encodeFiles(files []PDFFile) (string, error) {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	data, err := json.Marshal(paths)
	if err != nil {
		return "", fmt.Errorf("marshal files: %w", err)
	}
	return string(data), nil
}

func decodeFiles(data []byte) ([]PDFFile, error) {
	if len(data) == 0 {
		return []PDFFile{}, nil
	}
	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		return nil, fmt.Errorf("unmarshal files: %w", err)
	}
	files := make([]PDFFile, len(paths))
	for i, p := range paths {
		files[i] = PDFFile{Path: p}
	}
	return files, nil
}
