package driver

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"zkc/internal/ast"
	"zkc/internal/project"
)

// PassVersion is mixed into every cache key; bump it whenever the pass
// output for the same input changes.
const PassVersion = "ssa/1"

// Current schema version - increment when CachedUnit format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит результаты SSA по ключу входов на диске.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedUnit is one converted program as stored on disk.
type CachedUnit struct {
	Schema  uint16
	Program string
	Tree    []byte // ast.WriteMsgpack output
	Created time.Time
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache uses dir as the cache root.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// CacheKey combines the pass version, the options that change the output and
// the digests of every input file, in order.
func CacheKey(maxUnroll int, validate bool, inputs ...project.Digest) project.Digest {
	opts := project.HashBytes(fmt.Appendf(nil, "%s|unroll=%d|validate=%t", PassVersion, maxUnroll, validate))
	return project.Combine(opts, inputs...)
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первым двум символам, чтобы не раздувать один каталог
	return filepath.Join(c.dir, "units", hexKey[:2], hexKey+".mp")
}

// Put stores prog under key.
func (c *DiskCache) Put(key project.Digest, prog *ast.Program) error {
	if c == nil {
		return nil
	}
	var tree bytes.Buffer
	if err := ast.WriteMsgpack(&tree, prog); err != nil {
		return err
	}
	data, err := msgpack.Marshal(&CachedUnit{
		Schema:  diskCacheSchemaVersion,
		Program: prog.Name(),
		Tree:    tree.Bytes(),
		Created: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return writeFileAtomic(c.pathFor(key), data)
}

// Get returns the program stored under key. Entries written with another
// schema count as misses.
func (c *DiskCache) Get(key project.Digest) (*ast.Program, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	data, err := os.ReadFile(c.pathFor(key))
	c.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var unit CachedUnit
	if err := msgpack.Unmarshal(data, &unit); err != nil {
		return nil, false, fmt.Errorf("cache entry %x: %w", key[:4], err)
	}
	if unit.Schema != diskCacheSchemaVersion {
		return nil, false, nil
	}
	prog, err := ast.ReadMsgpack(bytes.NewReader(unit.Tree))
	if err != nil {
		return nil, false, fmt.Errorf("cache entry %x: %w", key[:4], err)
	}
	return prog, true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
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
