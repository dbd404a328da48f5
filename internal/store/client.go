// Package store persists per-user records behind a small Client interface,
// with a BoltDB-backed production implementation and an in-memory one for
// tests.
package store

import (
	"context"
	"errors"

	"github.com/ncaceres/cardbot/internal/domain"
)

// Client defines the minimal contract command handlers need to load and
// save per-user records. A user with no stored record loads as a zero
// record carrying the user ID, never as an error.
type Client interface {
	LoadRecord(ctx context.Context, userID string) (domain.UserRecord, error)
	SaveRecord(ctx context.Context, record domain.UserRecord) error
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Options configures a store client implementation.
type Options struct {
	Path string
}

// ErrMissingPath indicates the database file path is not provided.
var ErrMissingPath = errors.New("store path is required")

// ErrMissingUserID indicates a record without a user ID was submitted.
var ErrMissingUserID = errors.New("user id is required")
