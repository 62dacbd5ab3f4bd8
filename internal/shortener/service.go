package shortener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ajith05/url-shortener/codegen"
	"github.com/ajith05/url-shortener/internal/canon"
	"github.com/ajith05/url-shortener/internal/errx"
)

const (
	DefaultMaxAttempts = 5
	MaxMaxAttempts     = 100
)

// Strategy selects how codes are produced for a new URL.
type Strategy string

const (
	// StrategyRandom samples codes uniformly at random. Two concurrent creates
	// of the same URL may both miss the dedup lookup and end up with two codes.
	StrategyRandom Strategy = "random"

	// StrategyHashed derives codes from the tuple digest and inserts with
	// insert-if-absent, so concurrent creates of one URL converge on one code.
	StrategyHashed Strategy = "hashed"
)

// ErrCodeSpaceExhausted is returned when every attempt collided.
var ErrCodeSpaceExhausted = errors.New("could not find a free code")

// CreateResult is what Create hands back to the caller.
type CreateResult struct {
	Link     Link
	Existing bool // true when an earlier record was reused
}

// Service defines the business logic operations for URL shortening.
type Service interface {
	Create(ctx context.Context, rawURL string) (CreateResult, error)
	Resolve(ctx context.Context, code string) (string, error)
}

type service struct {
	repo        Repository
	generator   codegen.Generator
	strategy    Strategy
	maxAttempts int
	logger      *slog.Logger
}

// ServiceConfig holds configuration for the service.
type ServiceConfig struct {
	Generator   codegen.Generator
	Strategy    Strategy
	MaxAttempts int // insert attempts per create (default: 5)
	Logger      *slog.Logger
}

// NewService creates a new service instance.
func NewService(repo Repository, config *ServiceConfig) Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	gen := config.Generator
	if gen == nil {
		gen = codegen.NewRandom()
	}

	strategy := config.Strategy
	if strategy != StrategyHashed {
		strategy = StrategyRandom
	}

	attempts := config.MaxAttempts
	if attempts <= 0 || attempts > MaxMaxAttempts {
		attempts = DefaultMaxAttempts
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &service{
		repo:        repo,
		generator:   gen,
		strategy:    strategy,
		maxAttempts: attempts,
		logger:      logger,
	}
}

// Create returns the code for rawURL, reusing an existing record when the
// dedup lookup finds one and issuing a new code otherwise.
func (s *service) Create(ctx context.Context, rawURL string) (CreateResult, error) {
	const op = "shortener.service.Create"

	tuple, err := canon.Parse(rawURL)
	if err != nil {
		return CreateResult{}, errx.E(op, errx.Invalid, err)
	}

	// Advisory only: a concurrent create may commit the same tuple after
	// this lookup misses.
	code, err := s.repo.FindByTuple(ctx, tuple)
	switch {
	case err == nil:
		return CreateResult{
			Link:     Link{Code: code, Tuple: tuple},
			Existing: true,
		}, nil
	case errx.KindOf(err) != errx.NotFound:
		return CreateResult{}, errx.Wrap(op, err)
	}

	if s.strategy == StrategyHashed {
		return s.createHashed(ctx, tuple)
	}
	return s.createRandom(ctx, tuple)
}

// createRandom inserts fresh random codes until one is accepted. Only the
// store's uniqueness constraint decides whether a code is free.
func (s *service) createRandom(ctx context.Context, tuple canon.Tuple) (CreateResult, error) {
	const op = "shortener.service.createRandom"

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code, err := s.generator.Generate(codegen.Length)
		if err != nil {
			return CreateResult{}, errx.E(op, errx.Internal, err)
		}

		link, err := s.repo.Insert(ctx, code, tuple)
		if err == nil {
			return CreateResult{Link: link}, nil
		}
		if errx.KindOf(err) != errx.Conflict {
			return CreateResult{}, errx.Wrap(op, err)
		}

		s.logger.WarnContext(ctx, "code collision, retrying",
			"attempt", attempt,
			"max_attempts", s.maxAttempts,
		)
	}

	return CreateResult{}, s.exhausted(ctx, op)
}

// createHashed walks the digest-derived codes for tuple. A taken code that
// already holds tuple is the answer; a code holding another tuple is skipped.
func (s *service) createHashed(ctx context.Context, tuple canon.Tuple) (CreateResult, error) {
	const op = "shortener.service.createHashed"

	digest, err := tuple.Digest()
	if err != nil {
		return CreateResult{}, errx.E(op, errx.Internal, err)
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		code, err := codegen.FromDigest(digest, attempt, codegen.Length)
		if err != nil {
			return CreateResult{}, errx.E(op, errx.Internal, err)
		}

		link, inserted, err := s.repo.InsertIfAbsent(ctx, code, tuple)
		if err != nil {
			return CreateResult{}, errx.Wrap(op, err)
		}
		if inserted {
			return CreateResult{Link: link}, nil
		}
		if link.Tuple.Equal(tuple) {
			return CreateResult{Link: link, Existing: true}, nil
		}

		s.logger.WarnContext(ctx, "digest code held by another url, advancing",
			"attempt", attempt+1,
			"max_attempts", s.maxAttempts,
		)
	}

	return CreateResult{}, s.exhausted(ctx, op)
}

func (s *service) exhausted(ctx context.Context, op string) error {
	s.logger.ErrorContext(ctx, "code space exhausted", "max_attempts", s.maxAttempts)
	return errx.E(op, errx.Exhausted,
		fmt.Errorf("%w after %d attempts", ErrCodeSpaceExhausted, s.maxAttempts))
}

// Resolve returns the URL rebuilt from the record issued under code.
func (s *service) Resolve(ctx context.Context, code string) (string, error) {
	const op = "shortener.service.Resolve"

	if !codegen.Valid(code) {
		return "", errx.E(op, errx.NotFound, fmt.Errorf("malformed code %q", code))
	}

	link, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return "", errx.Wrap(op, err)
	}
	return link.Tuple.String(), nil
}
