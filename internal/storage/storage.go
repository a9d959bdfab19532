// Package storage persists trained model bundles. It uses BoltDB as the
// underlying engine: each bundle is stored as one versioned JSON blob, with
// a metadata record per version so bundles can be listed, activated and
// rolled back without deserializing the full artifact.
package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"campscore/internal/engine"
)

const (
	bundlesBucket = "bundles" // version -> serialized engine.Bundle
	metaBucket    = "meta"    // version -> BundleInfo, plus the active pointer
	activeKey     = "__active"
)

// BundleInfo is the lightweight metadata kept per stored bundle.
type BundleInfo struct {
	Version       string    `json:"version"`
	SchemaVersion string    `json:"schema_version"`
	CreatedAt     time.Time `json:"created_at"`
	Rows          int       `json:"rows"`
	Skipped       int       `json:"skipped_partitions"`
	Active        bool      `json:"active"`
}

// Store provides persistent bundle storage backed by BoltDB.
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) the bundle database under dataPath.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "campscore.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bundlesBucket)); err != nil {
			return fmt.Errorf("create bundles bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(metaBucket)); err != nil {
			return fmt.Errorf("create meta bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveBundle stores a bundle and marks it active in one transaction.
func (s *Store) SaveBundle(b *engine.Bundle) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}
	info := BundleInfo{
		Version:       b.Version,
		SchemaVersion: b.SchemaVersion,
		CreatedAt:     b.CreatedAt,
	}
	if b.Report != nil {
		info.Rows = b.Report.Rows
		info.Skipped = len(b.Report.Skipped)
	}
	metaData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal bundle info: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket([]byte(bundlesBucket)).Put([]byte(b.Version), data); err != nil {
			return err
		}
		meta := tx.Bucket([]byte(metaBucket))
		if err := meta.Put([]byte(b.Version), metaData); err != nil {
			return err
		}
		return meta.Put([]byte(activeKey), []byte(b.Version))
	})
}

// LoadActive loads the currently active bundle.
func (s *Store) LoadActive() (*engine.Bundle, error) {
	var version string
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(metaBucket)).Get([]byte(activeKey))
		if v == nil {
			return fmt.Errorf("no active bundle")
		}
		version = string(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.LoadVersion(version)
}

// LoadVersion loads one specific bundle version.
func (s *Store) LoadVersion(version string) (*engine.Bundle, error) {
	var b engine.Bundle
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bundlesBucket)).Get([]byte(version))
		if data == nil {
			return fmt.Errorf("bundle version %s not found", version)
		}
		return json.Unmarshal(data, &b)
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListVersions returns metadata for every stored bundle, newest first.
func (s *Store) ListVersions() ([]BundleInfo, error) {
	var infos []BundleInfo
	var active string
	err := s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket([]byte(metaBucket))
		if v := meta.Get([]byte(activeKey)); v != nil {
			active = string(v)
		}
		return meta.ForEach(func(k, v []byte) error {
			if string(k) == activeKey {
				return nil
			}
			var info BundleInfo
			if err := json.Unmarshal(v, &info); err != nil {
				return nil // skip malformed records
			}
			infos = append(infos, info)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	for i := range infos {
		infos[i].Active = infos[i].Version == active
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// Activate marks a stored version as the active bundle.
func (s *Store) Activate(version string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(bundlesBucket)).Get([]byte(version)) == nil {
			return fmt.Errorf("bundle version %s not found", version)
		}
		return tx.Bucket([]byte(metaBucket)).Put([]byte(activeKey), []byte(version))
	})
}

// Rollback activates the most recent version before the current one.
func (s *Store) Rollback() (string, error) {
	infos, err := s.ListVersions()
	if err != nil {
		return "", err
	}
	if len(infos) < 2 {
		return "", fmt.Errorf("no previous version available for rollback")
	}
	currentIdx := -1
	for i, info := range infos {
		if info.Active {
			currentIdx = i
			break
		}
	}
	if currentIdx == -1 {
		return "", fmt.Errorf("no active version found")
	}
	if currentIdx+1 >= len(infos) {
		return "", fmt.Errorf("no previous version available")
	}
	target := infos[currentIdx+1].Version
	return target, s.Activate(target)
}
