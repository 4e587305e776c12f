package session

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"go.etcd.io/bbolt"

	"biblioaccess/internal/config"
	"biblioaccess/internal/ocr"
	"biblioaccess/internal/users"
)

const (
	sessionBucket = "session"

	keyToken    = "auth_token"
	keyProfile  = "current_user"
	keyDocument = "ocr_data"
)

// Change describes a mutation of the session store, delivered to subscribers.
type Change struct {
	Key string
}

// Profile is the cached identity of the signed-in user.
type Profile struct {
	UserID int64      `json:"userId"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Role   users.Role `json:"role"`
}

// Store is the durable client-side session: the bearer token, the cached
// profile, and the document under OCR review survive process restarts.
type Store struct {
	db *bbolt.DB

	mu          sync.Mutex
	subscribers map[int]chan Change
	nextSub     int
}

// Open initializes the session database under the configured session
// directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	dbPath := filepath.Join(cfg.Paths.SessionDir, "session.db")
	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(sessionBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create session bucket: %w", err)
	}
	return &Store{db: db, subscribers: make(map[int]chan Change)}, nil
}

// Close closes the underlying database and drops all subscriptions.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.mu.Lock()
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
	s.mu.Unlock()
	return s.db.Close()
}

// Subscribe registers for change notifications. The returned cancel function
// must be called to release the subscription. Slow consumers miss events
// rather than blocking writers.
func (s *Store) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Change, 8)
	s.subscribers[id] = ch
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			close(sub)
			delete(s.subscribers, id)
		}
	}
	return ch, cancel
}

func (s *Store) notify(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- Change{Key: key}:
		default:
		}
	}
}

func (s *Store) put(key string, value []byte) error {
	if err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Put([]byte(key), value)
	}); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	s.notify(key)
	return nil
}

func (s *Store) get(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if raw := tx.Bucket([]byte(sessionBucket)).Get([]byte(key)); raw != nil {
			value = make([]byte, len(raw))
			copy(value, raw)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) delete(keys ...string) error {
	if err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		for _, key := range keys {
			if err := bucket.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("delete session keys: %w", err)
	}
	for _, key := range keys {
		s.notify(key)
	}
	return nil
}

// SetToken stores the bearer token.
func (s *Store) SetToken(token string) error {
	return s.put(keyToken, []byte(token))
}

// Token returns the stored bearer token, or "" when signed out.
func (s *Store) Token() (string, error) {
	value, err := s.get(keyToken)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// SaveProfile caches the signed-in user's identity.
func (s *Store) SaveProfile(profile *Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return s.put(keyProfile, data)
}

// Profile returns the cached identity, or nil when none is stored.
func (s *Store) Profile() (*Profile, error) {
	value, err := s.get(keyProfile)
	if err != nil || value == nil {
		return nil, err
	}
	var profile Profile
	if err := json.Unmarshal(value, &profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &profile, nil
}

// SaveDocument persists the document under OCR review. Implements ocr.Saver.
func (s *Store) SaveDocument(_ context.Context, doc *ocr.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	return s.put(keyDocument, data)
}

// Document returns the persisted review document, or nil when none is stored.
func (s *Store) Document() (*ocr.Document, error) {
	value, err := s.get(keyDocument)
	if err != nil || value == nil {
		return nil, err
	}
	var doc ocr.Document
	if err := json.Unmarshal(value, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return &doc, nil
}

// ClearDocument removes the persisted review document.
func (s *Store) ClearDocument() error {
	return s.delete(keyDocument)
}

// Teardown wipes the authenticated state. Called on sign-out and whenever the
// server answers 401; the review document is wiped with it.
func (s *Store) Teardown() error {
	return s.delete(keyToken, keyProfile, keyDocument)
}
