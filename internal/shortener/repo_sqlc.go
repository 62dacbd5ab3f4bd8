package shortener

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ajith05/url-shortener/internal/canon"
	"github.com/ajith05/url-shortener/internal/db/migrate"
	db "github.com/ajith05/url-shortener/internal/db/sqlc"
	"github.com/ajith05/url-shortener/internal/errx"
)

// querier is an internal interface that abstracts *db.Queries
type querier interface {
	FindCodeByTuple(ctx context.Context, arg db.FindCodeByTupleParams) (string, error)
	GetURLByCode(ctx context.Context, code string) (db.Url, error)
	InsertURL(ctx context.Context, arg db.InsertURLParams) (db.Url, error)
	InsertURLIfAbsent(ctx context.Context, arg db.InsertURLIfAbsentParams) (db.Url, error)
}

type repo struct {
	q    querier
	conn migrate.Execer
}

// NewRepository returns a Postgres-backed Repository. conn is normally a
// *pgxpool.Pool; every call checks a connection out and returns it when done.
func NewRepository(conn db.DBTX) Repository {
	return &repo{
		q:    db.New(conn),
		conn: conn,
	}
}

func textOrEmpty(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func toDomainLink(x db.Url) (Link, error) {
	q, err := canon.ParseSerialized(x.Query)
	if err != nil {
		return Link{}, fmt.Errorf("url %d: %w", x.ID, err)
	}

	link := Link{
		ID:   x.ID,
		Code: x.Code,
		Tuple: canon.Tuple{
			Scheme:    x.Scheme,
			Authority: x.Authority,
			Path:      textOrEmpty(x.Path),
			Query:     q,
			Fragment:  textOrEmpty(x.Fragment),
		},
	}
	if x.CreatedAt.Valid {
		link.CreatedAt = x.CreatedAt.Time
	}
	return link, nil
}

func mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errx.E(op, errx.NotFound, err)

	case isCodeUniqueViolation(err):
		return errx.E(op, errx.Conflict, err)

	default:
		return errx.E(op, errx.Unavailable, err)
	}
}

func (r *repo) InitSchema(ctx context.Context) error {
	const op = "shortener.repo.InitSchema"

	if err := migrate.Postgres(ctx, r.conn); err != nil {
		return errx.E(op, errx.Unavailable, err)
	}
	return nil
}

func (r *repo) FindByTuple(ctx context.Context, t canon.Tuple) (string, error) {
	const op = "shortener.repo.FindByTuple"

	query, err := t.Query.Serialize()
	if err != nil {
		return "", errx.E(op, errx.Internal, err)
	}

	code, err := r.q.FindCodeByTuple(ctx, db.FindCodeByTupleParams{
		Scheme:    t.Scheme,
		Authority: t.Authority,
		Path:      t.Path,
		Query:     query,
		Fragment:  t.Fragment,
	})
	if err != nil {
		return "", mapRepoError(op, err)
	}
	return code, nil
}

func (r *repo) FindByCode(ctx context.Context, code string) (Link, error) {
	const op = "shortener.repo.FindByCode"

	row, err := r.q.GetURLByCode(ctx, code)
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}

	link, err := toDomainLink(row)
	if err != nil {
		return Link{}, errx.E(op, errx.Internal, err)
	}
	return link, nil
}

func (r *repo) Insert(ctx context.Context, code string, t canon.Tuple) (Link, error) {
	const op = "shortener.repo.Insert"

	query, err := t.Query.Serialize()
	if err != nil {
		return Link{}, errx.E(op, errx.Internal, err)
	}

	row, err := r.q.InsertURL(ctx, db.InsertURLParams{
		Scheme:    t.Scheme,
		Authority: t.Authority,
		Path:      pgtype.Text{String: t.Path, Valid: true},
		Query:     query,
		Fragment:  pgtype.Text{String: t.Fragment, Valid: true},
		Code:      code,
	})
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}

	link, err := toDomainLink(row)
	if err != nil {
		return Link{}, errx.E(op, errx.Internal, err)
	}
	return link, nil
}

func (r *repo) InsertIfAbsent(ctx context.Context, code string, t canon.Tuple) (Link, bool, error) {
	const op = "shortener.repo.InsertIfAbsent"

	query, err := t.Query.Serialize()
	if err != nil {
		return Link{}, false, errx.E(op, errx.Internal, err)
	}

	row, err := r.q.InsertURLIfAbsent(ctx, db.InsertURLIfAbsentParams{
		Scheme:    t.Scheme,
		Authority: t.Authority,
		Path:      pgtype.Text{String: t.Path, Valid: true},
		Query:     query,
		Fragment:  pgtype.Text{String: t.Fragment, Valid: true},
		Code:      code,
	})
	inserted := true
	if errors.Is(err, pgx.ErrNoRows) {
		// ON CONFLICT DO NOTHING returns no row when code is already taken.
		inserted = false
		row, err = r.q.GetURLByCode(ctx, code)
	}
	if err != nil {
		return Link{}, false, mapRepoError(op, err)
	}

	link, err := toDomainLink(row)
	if err != nil {
		return Link{}, false, errx.E(op, errx.Internal, err)
	}
	return link, inserted, nil
}
