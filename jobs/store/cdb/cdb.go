// Package cdb provides a jobs.Store backed by CockroachDB or any other
// postgres wire compatible database.
package cdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mycok/uJobs/jobs"
)

// Static and compile-time check to ensure CockroachDBStore implements
// jobs.Store.
var _ jobs.Store = (*CockroachDBStore)(nil)

const postingColumns = `id, url, title, company, location, description, keywords,
	board, remote, salary, date_posted, valid_through, discovered_at`

var (
	createTableQuery = `
					CREATE TABLE IF NOT EXISTS postings (
						id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
						url STRING NOT NULL UNIQUE,
						title STRING NOT NULL DEFAULT '',
						company STRING NOT NULL DEFAULT '',
						location STRING NOT NULL DEFAULT '',
						description STRING NOT NULL DEFAULT '',
						keywords STRING[],
						board STRING NOT NULL DEFAULT '',
						remote BOOL NOT NULL DEFAULT false,
						salary JSONB,
						date_posted TIMESTAMPTZ,
						valid_through TIMESTAMPTZ,
						discovered_at TIMESTAMPTZ
					)
					`

	// discovered_at keeps the earliest non-null value.
	upsertPostingQuery = `
					INSERT INTO postings (url, title, company, location, description,
						keywords, board, remote, salary, date_posted, valid_through, discovered_at)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
					ON CONFLICT (url)
					DO UPDATE SET
						title=excluded.title,
						company=excluded.company,
						location=excluded.location,
						description=excluded.description,
						keywords=excluded.keywords,
						board=excluded.board,
						remote=excluded.remote,
						salary=excluded.salary,
						date_posted=excluded.date_posted,
						valid_through=excluded.valid_through,
						discovered_at=COALESCE(
							LEAST(postings.discovered_at, excluded.discovered_at),
							postings.discovered_at,
							excluded.discovered_at
						)
					RETURNING id, discovered_at
					`

	findByIDQuery  = "SELECT " + postingColumns + " FROM postings WHERE id=$1"
	findByURLQuery = "SELECT " + postingColumns + " FROM postings WHERE url=$1"

	searchTextExpr = "concat_ws(' ', title, company, location, description, array_to_string(keywords, ' '))"

	likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
)

// CockroachDBStore persists postings in a single postings table.
type CockroachDBStore struct {
	db *sql.DB
}

// NewCockroachDBStore connects to the database at dsn and makes sure the
// postings table exists.
func NewCockroachDBStore(dsn string) (*CockroachDBStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, createTableQuery); err != nil {
		return nil, fmt.Errorf("create postings table: %w", err)
	}

	return &CockroachDBStore{db: db}, nil
}

// Close terminates the connection to the database.
func (s *CockroachDBStore) Close() error {
	return s.db.Close()
}

// Upsert implements jobs.Store. Updating an existing posting keeps its ID
// and the time it was first discovered.
func (s *CockroachDBStore) Upsert(p *jobs.Posting) error {
	url := jobs.CanonicalURL(p.URL)
	if url == "" {
		return fmt.Errorf("upsert: %w", jobs.ErrMissingURL)
	}

	salary, err := marshalSalary(p.Salary)
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var (
		id           uuid.UUID
		discoveredAt sql.NullTime
	)

	err = s.db.QueryRowContext(
		ctx, upsertPostingQuery,
		url, p.Title, p.Company, p.Location, p.Description,
		pq.Array(p.Keywords), string(p.Board), p.Remote, salary,
		nullTime(p.DatePosted), nullTime(p.ValidThrough), nullTime(p.DiscoveredAt),
	).Scan(&id, &discoveredAt)
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}

	p.ID = id
	p.URL = url
	p.DiscoveredAt = timeValue(discoveredAt)

	return nil
}

// FindByID implements jobs.Store.
func (s *CockroachDBStore) FindByID(id uuid.UUID) (*jobs.Posting, error) {
	p, err := s.findOne(findByIDQuery, id)
	if err != nil {
		return nil, fmt.Errorf("find by ID: %w", err)
	}

	return p, nil
}

// FindByURL implements jobs.Store.
func (s *CockroachDBStore) FindByURL(url string) (*jobs.Posting, error) {
	p, err := s.findOne(findByURLQuery, jobs.CanonicalURL(url))
	if err != nil {
		return nil, fmt.Errorf("find by URL: %w", err)
	}

	return p, nil
}

func (s *CockroachDBStore) findOne(query string, arg interface{}) (*jobs.Posting, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	p, err := scanPosting(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, jobs.ErrNotFound
		}

		return nil, err
	}

	return p, nil
}

// Search implements jobs.Store. Postings match when their text contains
// any of the expression terms; they are ordered by the number of matching
// terms, then by posting date, newest first. An empty expression matches
// every posting.
func (s *CockroachDBStore) Search(q jobs.StoreQuery) (jobs.Iterator, error) {
	where, score, args := searchClauses(q.Expression)

	var total uint64
	if err := s.db.QueryRow("SELECT count(*) FROM postings"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM postings%s ORDER BY %s DESC, date_posted DESC NULLS LAST, id OFFSET $%d",
		postingColumns, where, score, len(args)+1,
	)

	rows, err := s.db.Query(query, append(args, int64(q.Offset))...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return &postingIterator{rows: rows, total: total}, nil
}

// searchClauses builds the WHERE clause and the score expression for a
// search expression, along with their positional arguments.
func searchClauses(expr string) (string, string, []interface{}) {
	terms := strings.Fields(strings.ToLower(expr))
	if len(terms) == 0 {
		return "", "0", nil
	}

	var (
		conds []string
		args  []interface{}
	)

	for i, term := range terms {
		conds = append(conds, fmt.Sprintf("(CASE WHEN %s ILIKE $%d THEN 1 ELSE 0 END)", searchTextExpr, i+1))
		args = append(args, "%"+likeEscaper.Replace(term)+"%")
	}

	score := strings.Join(conds, " + ")

	return " WHERE (" + score + ") > 0", score, args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPosting(row rowScanner) (*jobs.Posting, error) {
	var (
		p            jobs.Posting
		keywords     pq.StringArray
		board        string
		salary       []byte
		datePosted   sql.NullTime
		validThrough sql.NullTime
		discoveredAt sql.NullTime
	)

	err := row.Scan(
		&p.ID, &p.URL, &p.Title, &p.Company, &p.Location, &p.Description, &keywords,
		&board, &p.Remote, &salary, &datePosted, &validThrough, &discoveredAt,
	)
	if err != nil {
		return nil, err
	}

	if keywords != nil {
		p.Keywords = []string(keywords)
	}

	if len(salary) != 0 {
		p.Salary = new(jobs.Salary)
		if err := json.Unmarshal(salary, p.Salary); err != nil {
			return nil, err
		}
	}

	p.Board = jobs.Board(board)
	p.DatePosted = timeValue(datePosted)
	p.ValidThrough = timeValue(validThrough)
	p.DiscoveredAt = timeValue(discoveredAt)

	return &p, nil
}

func marshalSalary(s *jobs.Salary) (interface{}, error) {
	if s == nil {
		return nil, nil
	}

	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}

	return string(data), nil
}

// Zero times are stored as NULL.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

func timeValue(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}

	return t.Time.UTC()
}
