package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Entry is a cached generation.
type Entry struct {
	FetchedAt time.Time `json:"fetched_at"`
	Model     string    `json:"model,omitempty"`
	Text      string    `json:"text"`
}

// FileCache stores generations as JSON files, one per key.
type FileCache struct {
	dir string
}

// NewFileCache creates dir if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Read returns the entry for key when it exists and is younger than maxAge.
// maxAge <= 0 disables the age check.
func (fc *FileCache) Read(key string, maxAge time.Duration) (*Entry, bool) {
	data, err := os.ReadFile(fc.path(key))
	if err != nil {
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if maxAge > 0 && time.Since(entry.FetchedAt) > maxAge {
		return &entry, false
	}
	return &entry, true
}

// Write stores entry under key, replacing any previous one atomically.
func (fc *FileCache) Write(key string, entry *Entry) error {
	entry.FetchedAt = time.Now()
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	path := fc.path(key)
	tmp := path + fmt.Sprintf(".tmp.%d", rand.Int())
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (fc *FileCache) path(key string) string {
	return filepath.Join(fc.dir, key+".json")
}

// KeyFor is a stable file-safe key for a model and prompt.
func KeyFor(model, prompt string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

// CachingClient answers repeated prompts from a FileCache.
type CachingClient struct {
	Next  Client
	Cache *FileCache
	TTL   time.Duration
	Model string
}

// Generate implements Client. Cache write failures are logged and do not
// fail the call.
func (c *CachingClient) Generate(ctx context.Context, prompt string) (string, error) {
	key := KeyFor(c.Model, prompt)
	log := zerolog.Ctx(ctx)
	if e, ok := c.Cache.Read(key, c.TTL); ok {
		log.Debug().Str("key", key).Msg("generation cache hit")
		return e.Text, nil
	}
	text, err := c.Next.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if err := c.Cache.Write(key, &Entry{Model: c.Model, Text: text}); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("generation cache write failed")
	}
	return text, nil
}
