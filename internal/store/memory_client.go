package store

import (
	"context"
	"sync"

	"github.com/ncaceres/cardbot/internal/domain"
)

// MemoryClient is an in-memory implementation of Client used to test
// handler logic without a database file.
type MemoryClient struct {
	mu           sync.Mutex
	records      map[string]domain.UserRecord
	err          error
	connectivity error
}

// NewMemoryClient instantiates an empty in-memory client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{records: make(map[string]domain.UserRecord)}
}

// WithError configures the client to fail subsequent load/save calls.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithConnectivityError forces VerifyConnectivity to return the supplied error.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

func (m *MemoryClient) LoadRecord(_ context.Context, userID string) (domain.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return domain.UserRecord{}, m.err
	}
	if userID == "" {
		return domain.UserRecord{}, ErrMissingUserID
	}
	if record, ok := m.records[userID]; ok {
		return record, nil
	}
	return domain.UserRecord{UserID: userID}, nil
}

func (m *MemoryClient) SaveRecord(_ context.Context, record domain.UserRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	if record.UserID == "" {
		return ErrMissingUserID
	}
	m.records[record.UserID] = record
	return nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	return nil
}

// Record returns the stored record for the user, if any.
func (m *MemoryClient) Record(userID string) (domain.UserRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[userID]
	return record, ok
}
