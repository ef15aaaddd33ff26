// Package credentials provides durable, encrypted key-value storage for
// login credentials, tokens, and cached user identity.
package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Well-known credential keys.
const (
	KeyEmail        = "email"
	KeyPassword     = "password"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserID       = "user_id"
	KeyUsername     = "username"
	KeyRootFolderID = "root_folder_id"
)

// ErrNotFound is returned when a credential key has no stored value.
var ErrNotFound = errors.New("credential not found")

// Store is an encrypted key-value store backed by SQLite. Values are
// encrypted at rest with AES-256-GCM under a per-install master key.
type Store struct {
	db        *sql.DB
	masterKey string
}

// Open opens (or creates) the credential store under dataDir. The database
// schema is migrated to the latest version and the master key file is
// created on first use.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	masterKey, err := loadOrCreateMasterKey(filepath.Join(dataDir, "master.key"))
	if err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dataDir, "credentials.db")
	if err := runMigrations(dbPath); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL", dbPath, (5 * time.Second).Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential database: %w", err)
	}

	// A credential store sees one caller at a time; a single connection
	// avoids SQLITE_BUSY churn under WAL.
	db.SetMaxOpenConns(1)

	return &Store{db: db, masterKey: masterKey}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get retrieves and decrypts the value stored under key.
// Returns ErrNotFound if the key has no value.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var encrypted []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM credentials WHERE key = ?", key).Scan(&encrypted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get credential %s: %w", key, err)
	}

	plaintext, err := decrypt(encrypted, s.masterKey)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt credential %s: %w", key, err)
	}

	return string(plaintext), nil
}

// Set encrypts and stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	encrypted, err := encrypt([]byte(value), s.masterKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt credential %s: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, encrypted, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set credential %s: %w", key, err)
	}
	return nil
}

// GetInt retrieves the value stored under key as an integer.
func (s *Store) GetInt(ctx context.Context, key string) (int, error) {
	value, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("credential %s is not an integer: %w", key, err)
	}
	return n, nil
}

// SetInt stores an integer value under key.
func (s *Store) SetInt(ctx context.Context, key string, value int) error {
	return s.Set(ctx, key, strconv.Itoa(value))
}

// Delete removes the value stored under key. Deleting a missing key is not
// an error.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, "DELETE FROM credentials WHERE key = ?", key); err != nil {
			return fmt.Errorf("failed to delete credential %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Clear removes every stored credential.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM credentials"); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// HasLoginCredentials reports whether both an email and a password are stored.
func (s *Store) HasLoginCredentials(ctx context.Context) bool {
	email, err := s.Get(ctx, KeyEmail)
	if err != nil || email == "" {
		return false
	}
	password, err := s.Get(ctx, KeyPassword)
	return err == nil && password != ""
}
