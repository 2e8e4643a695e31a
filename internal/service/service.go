// Package service holds the client-side domain services. Each owns the
// cache of one entity type and talks to the gateway through a Requester.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diagnosis/salon-bookings/pkg/logger"
)

var (
	ErrWriteFailed        = errors.New("write failed")
	ErrMissingCardDetails = errors.New("card number, expiry and cvv are required")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidPayment     = errors.New("invalid payment request")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// Requester is the subset of the API client the services need.
type Requester interface {
	Get(ctx context.Context, path string, query any, out any) error
	Post(ctx context.Context, path string, body any, out any) error
	Delete(ctx context.Context, path string) error
}

type Source int

const (
	SourceRemote Source = iota
	SourceDemo
)

func (s Source) String() string {
	if s == SourceDemo {
		return "demo"
	}
	return "remote"
}

// Result tags data with where it came from.
type Result[T any] struct {
	Data   T
	Source Source
}

func (r Result[T]) Demo() bool { return r.Source == SourceDemo }

func remoteResult[T any](v T) Result[T] { return Result[T]{Data: v, Source: SourceRemote} }
func demoResult[T any](v T) Result[T] { return Result[T]{Data: v, Source: SourceDemo} }

// Options are shared by every service.
type Options struct {
	// Demo serves the fixed dataset on failed reads and simulates failed
	// writes locally.
	Demo bool
	Now  func() time.Time
}

type base struct {
	api  Requester
	demo bool
	now  func() time.Time
}

func newBase(api Requester, opts Options) base {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return base{api: api, demo: opts.Demo, now: now}
}

// fallback decides what a failed read turns into. ok is false when the
// error must be returned to the caller.
func (b base) fallback(ctx context.Context, what string, err error) bool {
	if !b.demo {
		return false
	}
	logger.WarnContext(ctx, "Serving demo data after failed read", "resource", what, "error", err)
	return true
}

// writeFailed reports whether a failed write is simulated locally (demo
// mode); otherwise it returns err wrapped in ErrWriteFailed.
func (b base) writeFailed(ctx context.Context, op string, err error) (bool, error) {
	if b.demo {
		logger.WarnContext(ctx, "Simulating failed write locally", "operation", op, "error", err)
		return true, nil
	}
	return false, fmt.Errorf("%w: %s: %w", ErrWriteFailed, op, err)
}

func (b base) today() string {
	return b.now().Format("2006-01-02")
}
