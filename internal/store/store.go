package store

import (
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

const (
	fileKeyFmt      = "file:%s"
	cleanupInterval = time.Minute
)

// Store is an in-memory file store backed by patrickmn/go-cache.
// Every file expires after its own TTL; a TTL of zero or less keeps the
// store default.
type Store struct {
	files      *cache.Cache // keyed by "file:{fileID}"
	defaultTTL time.Duration
}

// StoredFile holds binary file data together with its MIME content type.
type StoredFile struct {
	Data        []byte
	ContentType string
	StoredAt    time.Time
}

// NewStore creates a new Store whose files expire after defaultTTL unless
// stored with an explicit TTL.
func NewStore(defaultTTL time.Duration) *Store {
	if defaultTTL <= 0 {
		defaultTTL = cache.NoExpiration
	}
	return &Store{
		files:      cache.New(defaultTTL, cleanupInterval),
		defaultTTL: defaultTTL,
	}
}

// fileKey returns the cache key for the given file ID.
func fileKey(fileID string) string {
	return fmt.Sprintf(fileKeyFmt, fileID)
}

// StoreFile stores data and its content type under fileID. A previous file
// with the same ID is replaced.
func (s *Store) StoreFile(fileID string, data []byte, contentType string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	stored := &StoredFile{
		Data:        append([]byte(nil), data...),
		ContentType: contentType,
		StoredAt:    time.Now(),
	}
	log.Debug().Str("fileid", fileID).Dur("ttl", ttl).Int("bytes", len(data)).Str("content_type", contentType).Msg("store: storing file")
	s.files.Set(fileKey(fileID), stored, ttl)
	return nil
}

// GetFile retrieves a file by ID. Returns nil if the file has expired or was
// never stored.
func (s *Store) GetFile(fileID string) (*StoredFile, error) {
	v, found := s.files.Get(fileKey(fileID))
	if !found {
		log.Debug().Str("fileid", fileID).Msg("store: file not found or expired")
		return nil, nil
	}

	sf, ok := v.(*StoredFile)
	if !ok {
		return nil, fmt.Errorf("store: unexpected value type %T for file %q", v, fileID)
	}
	log.Debug().Str("fileid", fileID).Int("bytes", len(sf.Data)).Msg("store: file retrieved")
	return sf, nil
}

// DeleteFile removes a file from the store.
func (s *Store) DeleteFile(fileID string) {
	log.Debug().Str("fileid", fileID).Msg("store: deleting file")
	s.files.Delete(fileKey(fileID))
}

// FileCount returns the number of files currently held, including expired
// files that have not been cleaned up yet.
func (s *Store) FileCount() int {
	return s.files.ItemCount()
}
