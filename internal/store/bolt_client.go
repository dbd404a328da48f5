package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/ncaceres/cardbot/internal/domain"
)

const recordsBucket = "user_records"

// BoltClient implements Client on an embedded BoltDB file. All data lives in
// a single file, so no external database process is required.
type BoltClient struct {
	db *bolt.DB
}

// NewBoltClient opens (or creates) the database at opts.Path and ensures the
// records bucket exists.
func NewBoltClient(opts Options) (*BoltClient, error) {
	if opts.Path == "" {
		return nil, ErrMissingPath
	}

	db, err := bolt.Open(opts.Path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(recordsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &BoltClient{db: db}, nil
}

// LoadRecord returns the stored record for the user, or a zero record
// carrying the user ID when none exists yet.
func (c *BoltClient) LoadRecord(_ context.Context, userID string) (domain.UserRecord, error) {
	if userID == "" {
		return domain.UserRecord{}, ErrMissingUserID
	}

	record := domain.UserRecord{UserID: userID}
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(recordsBucket)).Get([]byte(userID))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &record)
	})
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("load record %s: %w", userID, err)
	}
	return record, nil
}

// SaveRecord writes the record back as a whole document.
func (c *BoltClient) SaveRecord(_ context.Context, record domain.UserRecord) error {
	if record.UserID == "" {
		return ErrMissingUserID
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", record.UserID, err)
	}
	err = c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(recordsBucket)).Put([]byte(record.UserID), data)
	})
	if err != nil {
		return fmt.Errorf("save record %s: %w", record.UserID, err)
	}
	return nil
}

// VerifyConnectivity confirms the database file is readable.
func (c *BoltClient) VerifyConnectivity(context.Context) error {
	return c.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(recordsBucket)) == nil {
			return fmt.Errorf("bucket %s missing", recordsBucket)
		}
		return nil
	})
}

// Close releases the database file lock.
func (c *BoltClient) Close(context.Context) error {
	return c.db.Close()
}
