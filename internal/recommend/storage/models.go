// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "model:"

// ErrModelNotFound is returned when no stored model matches a lookup.
var ErrModelNotFound = errors.New("model not found")

// ErrStoreClosed is returned by operations on a closed store.
var ErrStoreClosed = errors.New("model store closed")

// ModelMetadata contains information about a stored model.
type ModelMetadata struct {
	// Name is the model name, one per prediction strategy.
	Name string `json:"name"`

	// Version is the model version (monotonically increasing per name).
	Version int `json:"version"`

	// Solver is the latent-factor solver, empty for neighborhood models.
	Solver string `json:"solver,omitempty"`

	// Metric is the similarity metric, empty for latent models.
	Metric string `json:"metric,omitempty"`

	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the model was saved.
	SavedAt time.Time `json:"saved_at"`

	// RatingCount is the number of ratings used for training.
	RatingCount int `json:"rating_count"`

	// ItemCount is the number of places.
	ItemCount int `json:"item_count"`

	// UserCount is the number of users.
	UserCount int `json:"user_count"`

	// RatingFingerprint identifies the exact ratings the model was trained on.
	RatingFingerprint string `json:"rating_fingerprint,omitempty"`

	// Checksum is the SHA-256 checksum of the uncompressed model data.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed model size in bytes.
	SizeBytes int64 `json:"size_bytes"`
}

// storedFile is the value format of a model entry.
type storedFile struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// Config configures the BadgerDB-backed model store.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in memory, for tests.
	InMemory bool

	// SyncWrites fsyncs every save.
	SyncWrites bool
}

// Store persists versioned model blobs in BadgerDB.
//
// Each entry is a gob-encoded storedFile whose payload is gob-encoded,
// gzip-compressed and protected by a SHA-256 checksum.
type Store struct {
	db     *badger.DB
	mu     sync.Mutex
	closed bool
}

// Open opens (or creates) a model store.
func Open(cfg Config) (*Store, error) {
	path := cfg.Path
	if cfg.InMemory {
		path = ""
	} else if path == "" {
		return nil, fmt.Errorf("model store path is required")
	}

	opts := badger.DefaultOptions(path).WithInMemory(cfg.InMemory)
	opts.SyncWrites = cfg.SyncWrites

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// modelKey zero-pads the version so keys sort numerically.
func modelKey(name string, version int) []byte {
	return []byte(fmt.Sprintf("%s%s:v%010d", keyPrefix, name, version))
}

func namePrefix(name string) []byte {
	return []byte(keyPrefix + name + ":v")
}

// parseModelKey extracts model name and version from a key like "model:latent:v0000000003".
func parseModelKey(key string) (name string, version int, ok bool) {
	rest, found := strings.CutPrefix(key, keyPrefix)
	if !found {
		return "", 0, false
	}
	idx := strings.LastIndex(rest, ":v")
	if idx < 0 {
		return "", 0, false
	}
	v, err := strconv.Atoi(rest[idx+2:])
	if err != nil {
		return "", 0, false
	}
	return rest[:idx], v, true
}

// versionsTxn returns the stored versions of name in ascending order.
func versionsTxn(txn *badger.Txn, name string) []int {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var versions []int
	prefix := namePrefix(name)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if n, v, ok := parseModelKey(string(it.Item().Key())); ok && n == name {
			versions = append(versions, v)
		}
	}
	return versions
}

// encodePayload gob-encodes, checksums and compresses data.
func encodePayload(data interface{}) (compressed []byte, checksum string, err error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return nil, "", fmt.Errorf("encode model: %w", err)
	}
	raw := buf.Bytes()

	hash := sha256.Sum256(raw)
	checksum = hex.EncodeToString(hash[:])

	var out bytes.Buffer
	gzw := gzip.NewWriter(&out)
	if _, err := gzw.Write(raw); err != nil {
		return nil, "", fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize compression: %w", err)
	}
	return out.Bytes(), checksum, nil
}

// decodePayload reverses encodePayload and verifies the checksum.
func decodePayload(sf *storedFile, target interface{}) error {
	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(target); err != nil {
		return fmt.Errorf("decode model: %w", err)
	}
	return nil
}

func decodeStoredFile(item *badger.Item) (*storedFile, error) {
	var sf storedFile
	err := item.Value(func(val []byte) error {
		return gob.NewDecoder(bytes.NewReader(val)).Decode(&sf)
	})
	if err != nil {
		return nil, fmt.Errorf("read model entry: %w", err)
	}
	return &sf, nil
}

// Save stores data as the next version of name and returns that version.
// A positive meta.Version is the lowest version Save may assign.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) Save(ctx context.Context, name string, data interface{}, meta ModelMetadata) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	compressed, checksum, err := encodePayload(data)
	if err != nil {
		return 0, err
	}

	meta.Name = name
	meta.Checksum = checksum
	meta.SizeBytes = int64(len(compressed))
	meta.SavedAt = time.Now()

	var version int
	err = s.db.Update(func(txn *badger.Txn) error {
		version = max(meta.Version, 1)
		if versions := versionsTxn(txn, name); len(versions) > 0 {
			version = max(version, versions[len(versions)-1]+1)
		}
		meta.Version = version

		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(storedFile{Metadata: meta, CompressedData: compressed}); err != nil {
			return fmt.Errorf("encode model entry: %w", err)
		}
		return txn.Set(modelKey(name, version), buf.Bytes())
	})
	if err != nil {
		return 0, fmt.Errorf("save model %s: %w", name, err)
	}
	return version, nil
}

// Load decodes a stored model into target.
// If version is 0, loads the latest version.
func (s *Store) Load(ctx context.Context, name string, version int, target interface{}) (*ModelMetadata, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sf *storedFile
	err := s.db.View(func(txn *badger.Txn) error {
		if version == 0 {
			versions := versionsTxn(txn, name)
			if len(versions) == 0 {
				return fmt.Errorf("%w: %s", ErrModelNotFound, name)
			}
			version = versions[len(versions)-1]
		}

		item, err := txn.Get(modelKey(name, version))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s v%d", ErrModelNotFound, name, version)
		}
		if err != nil {
			return err
		}
		sf, err = decodeStoredFile(item)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := decodePayload(sf, target); err != nil {
		return nil, fmt.Errorf("load model %s v%d: %w", name, version, err)
	}
	return &sf.Metadata, nil
}

// LatestVersion returns the latest version number for a model.
func (s *Store) LatestVersion(name string) (int, bool, error) {
	if err := s.checkOpen(); err != nil {
		return 0, false, err
	}
	var versions []int
	err := s.db.View(func(txn *badger.Txn) error {
		versions = versionsTxn(txn, name)
		return nil
	})
	if err != nil || len(versions) == 0 {
		return 0, false, err
	}
	return versions[len(versions)-1], true, nil
}

// ListModels returns metadata for every stored model version, ordered by
// name then version.
func (s *Store) ListModels(ctx context.Context) ([]ModelMetadata, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var models []ModelMetadata
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			sf, err := decodeStoredFile(it.Item())
			if err != nil {
				continue
			}
			models = append(models, sf.Metadata)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	sort.Slice(models, func(i, j int) bool {
		if models[i].Name != models[j].Name {
			return models[i].Name < models[j].Name
		}
		return models[i].Version < models[j].Version
	})
	return models, nil
}

// Delete removes a specific model version.
func (s *Store) Delete(_ context.Context, name string, version int) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		key := modelKey(name, version)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s v%d", ErrModelNotFound, name, version)
		}
		return txn.Delete(key)
	})
}

// Prune removes old versions of name, keeping only the latest keepVersions.
// Returns the number of versions removed.
func (s *Store) Prune(_ context.Context, name string, keepVersions int) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	if keepVersions < 1 {
		keepVersions = 1
	}

	removed := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		versions := versionsTxn(txn, name)
		if len(versions) <= keepVersions {
			return nil
		}
		for _, v := range versions[:len(versions)-keepVersions] {
			if err := txn.Delete(modelKey(name, v)); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("prune model %s: %w", name, err)
	}
	return removed, nil
}

// RunGC reclaims value log space. It is a no-op for in-memory stores.
func (s *Store) RunGC(ratio float64) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	for {
		err := s.db.RunValueLogGC(ratio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}
