package cache

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/forest-guardian/urban-heat-island/internal/properties"
)

// ErrCorrupted is returned by Load when an entry's checksum does not match its data.
var ErrCorrupted = errors.New("cache entry checksum mismatch")

type Entry[T any] struct {
	Data      T         `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	Checksum  string    `json:"checksum"`
}

type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T) error
	GenerateKey(params ...interface{}) string
}

// FileCache stores one JSON file per key below a directory. Writes go to a
// temporary file renamed into place, so readers never see a partial entry.
type FileCache[T any] struct {
	dir string
}

// NewFileCache returns a cache under <ROOT_PATH>/data/cache/<subDir>.
func NewFileCache[T any](subDir string) *FileCache[T] {
	return NewFileCacheAt[T](properties.DataPath("cache", subDir))
}

func NewFileCacheAt[T any](dir string) *FileCache[T] {
	return &FileCache[T]{dir: dir}
}

func (fc *FileCache[T]) Dir() string {
	return fc.dir
}

// GenerateKey hashes the printed form of params.
func (fc *FileCache[T]) GenerateKey(params ...interface{}) string {
	h := sha1.New()
	for _, param := range params {
		fmt.Fprintf(h, "%v_", param)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (fc *FileCache[T]) path(key string) string {
	return filepath.Join(fc.dir, key+".json")
}

// Get returns the cached value for key. Missing, unreadable and corrupted
// entries are all reported as a miss.
func (fc *FileCache[T]) Get(key string) (T, bool) {
	data, err := fc.Load(key)
	if err != nil {
		var zero T
		return zero, false
	}
	return data, true
}

// Load is Get with the reason for a miss.
func (fc *FileCache[T]) Load(key string) (T, error) {
	var zero T
	raw, err := os.ReadFile(fc.path(key))
	if err != nil {
		return zero, err
	}

	var entry Entry[T]
	if err := json.Unmarshal(raw, &entry); err != nil {
		return zero, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	sum, err := checksum(entry.Data)
	if err != nil {
		return zero, err
	}
	if entry.Checksum != sum {
		return zero, fmt.Errorf("%s: %w", key, ErrCorrupted)
	}
	return entry.Data, nil
}

func (fc *FileCache[T]) Set(key string, data T) error {
	if err := os.MkdirAll(fc.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	sum, err := checksum(data)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(Entry[T]{Data: data, CreatedAt: time.Now(), Checksum: sum})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	target := fc.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temp cache file: %w", err)
	}
	return nil
}

func checksum[T any](data T) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to checksum cache entry: %w", err)
	}
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:]), nil
}
