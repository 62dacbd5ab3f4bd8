package shortener

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ajith05/url-shortener/internal/canon"
	"github.com/ajith05/url-shortener/internal/db/migrate"
	"github.com/ajith05/url-shortener/internal/errx"
)

const (
	sqliteSelectColumns = `id, scheme, authority, path, query, fragment, code, created_at`

	sqliteFindCodeByTuple = `SELECT code FROM urls
		WHERE authority = ? AND path = ? AND scheme = ? AND fragment = ? AND query = ?
		ORDER BY id LIMIT 1`

	sqliteGetByCode = `SELECT ` + sqliteSelectColumns + ` FROM urls WHERE code = ?`

	sqliteInsert = `INSERT INTO urls (scheme, authority, path, query, fragment, code)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING ` + sqliteSelectColumns

	sqliteInsertIfAbsent = `INSERT INTO urls (scheme, authority, path, query, fragment, code)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (code) DO NOTHING
		RETURNING ` + sqliteSelectColumns
)

type sqliteRepo struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a single-file store at path. The
// returned closer releases the database handle.
func OpenSQLite(path string) (Repository, func() error, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("connect sqlite: %w", err)
	}

	// SQLite allows one writer at a time.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	return NewSQLiteRepository(conn), conn.Close, nil
}

// NewSQLiteRepository wraps an already opened database/sql handle.
func NewSQLiteRepository(conn *sql.DB) Repository {
	return &sqliteRepo{db: conn}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteLink(row rowScanner) (Link, error) {
	var (
		link      Link
		path      sql.NullString
		query     sql.NullString
		fragment  sql.NullString
		createdAt string
	)
	err := row.Scan(
		&link.ID,
		&link.Tuple.Scheme,
		&link.Tuple.Authority,
		&path,
		&query,
		&fragment,
		&link.Code,
		&createdAt,
	)
	if err != nil {
		return Link{}, err
	}

	q, err := canon.ParseSerialized([]byte(query.String))
	if err != nil {
		return Link{}, fmt.Errorf("url %d: %w", link.ID, err)
	}
	link.Tuple.Path = path.String
	link.Tuple.Query = q
	link.Tuple.Fragment = fragment.String

	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		link.CreatedAt = ts
	}
	return link, nil
}

func mapSQLiteError(op string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return errx.E(op, errx.NotFound, err)

	case isCodeUniqueViolation(err):
		return errx.E(op, errx.Conflict, err)

	default:
		return errx.E(op, errx.Unavailable, err)
	}
}

func (r *sqliteRepo) InitSchema(ctx context.Context) error {
	const op = "shortener.sqlite.InitSchema"

	if _, err := r.db.ExecContext(ctx, migrate.SQLiteSchema); err != nil {
		return errx.E(op, errx.Unavailable, err)
	}
	return nil
}

func (r *sqliteRepo) FindByTuple(ctx context.Context, t canon.Tuple) (string, error) {
	const op = "shortener.sqlite.FindByTuple"

	query, err := t.Query.Serialize()
	if err != nil {
		return "", errx.E(op, errx.Internal, err)
	}

	var code string
	err = r.db.QueryRowContext(ctx, sqliteFindCodeByTuple,
		t.Authority, t.Path, t.Scheme, t.Fragment, string(query),
	).Scan(&code)
	if err != nil {
		return "", mapSQLiteError(op, err)
	}
	return code, nil
}

func (r *sqliteRepo) FindByCode(ctx context.Context, code string) (Link, error) {
	const op = "shortener.sqlite.FindByCode"

	link, err := scanSQLiteLink(r.db.QueryRowContext(ctx, sqliteGetByCode, code))
	if err != nil {
		return Link{}, mapSQLiteError(op, err)
	}
	return link, nil
}

func (r *sqliteRepo) Insert(ctx context.Context, code string, t canon.Tuple) (Link, error) {
	const op = "shortener.sqlite.Insert"

	query, err := t.Query.Serialize()
	if err != nil {
		return Link{}, errx.E(op, errx.Internal, err)
	}

	link, err := scanSQLiteLink(r.db.QueryRowContext(ctx, sqliteInsert,
		t.Scheme, t.Authority, t.Path, string(query), t.Fragment, code,
	))
	if err != nil {
		return Link{}, mapSQLiteError(op, err)
	}
	return link, nil
}

func (r *sqliteRepo) InsertIfAbsent(ctx context.Context, code string, t canon.Tuple) (Link, bool, error) {
	const op = "shortener.sqlite.InsertIfAbsent"

	query, err := t.Query.Serialize()
	if err != nil {
		return Link{}, false, errx.E(op, errx.Internal, err)
	}

	link, err := scanSQLiteLink(r.db.QueryRowContext(ctx, sqliteInsertIfAbsent,
		t.Scheme, t.Authority, t.Path, string(query), t.Fragment, code,
	))
	if err == nil {
		return link, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Link{}, false, mapSQLiteError(op, err)
	}

	link, err = r.FindByCode(ctx, code)
	if err != nil {
		return Link{}, false, errx.Wrap(op, err)
	}
	return link, false, nil
}
