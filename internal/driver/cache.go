package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when Report format changes
const reportSchemaVersion uint16 = 2

// Digest is a SHA-256 sum.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// ReportCache хранит отчёты сканирования на диске по ключу содержимого.
// Thread-safe for concurrent access.
type ReportCache struct {
	mu  sync.RWMutex
	dir string
}

type cachePayload struct {
	Schema uint16
	Report Report
}

// OpenReportCache opens a cache rooted at dir. An empty dir means
// $XDG_CACHE_HOME/stepscan (or ~/.cache/stepscan).
func OpenReportCache(dir string) (*ReportCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "stepscan")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ReportCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *ReportCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// CacheKey derives the cache key of a file from its content digest and the
// load options that change a report.
func CacheKey(content Digest, opts Options) Digest {
	h := sha256.New()
	h.Write(content[:])
	var buf [8]byte
	binary.LittleEndian.PutUint16(buf[:2], reportSchemaVersion)
	h.Write(buf[:2])
	binary.LittleEndian.PutUint64(buf[:], uint64(max(opts.MaxDepth, 0)))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(max(opts.MaxDiagnostics, 0)))
	h.Write(buf[:])
	var flags byte
	if opts.SkipBadEntities {
		flags |= 1
	}
	if opts.SkipPMI {
		flags |= 2
	}
	h.Write([]byte{flags})
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (c *ReportCache) pathFor(key Digest) string {
	hexKey := key.String()
	// Подкаталог по первым двум символам, чтобы не держать всё в одном каталоге.
	return filepath.Join(c.dir, "reports", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a report to the disk cache.
func (c *ReportCache) Put(key Digest, rep *Report) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	// после успешного Rename файла уже нет
	defer func() { _ = os.Remove(tmp) }()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&cachePayload{Schema: reportSchemaVersion, Report: *rep}); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

// Get reads a report from the disk cache. Entries of another schema version
// are reported as misses.
func (c *ReportCache) Get(key Digest, out *Report) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()

	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return false, err
	}
	if payload.Schema != reportSchemaVersion {
		return false, nil
	}
	*out = payload.Report
	return true, nil
}

// DropAll invalidates the cache.
func (c *ReportCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
