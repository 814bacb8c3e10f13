package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"

	"typesizes/internal/diag"
	"typesizes/internal/reportfmt"
)

// Bump when Payload changes shape.
const schemaVersion uint16 = 1

// memEntries bounds the in-memory layer.
const memEntries = 64

// Digest is a SHA-256 content key.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Key hashes a report text. Inputs with the same text share a key.
func Key(text []byte) Digest {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "type-sizes/v%d\x00", schemaVersion)
	_, _ = h.Write(text)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Payload is one parsed input.
type Payload struct {
	Schema      uint16
	Types       []reportfmt.TypeJSON
	Diagnostics []DiagPayload
}

// DiagPayload is a diagnostic without its input name; the name is restored
// from the caller on Get.
type DiagPayload struct {
	Severity diag.Severity
	Code     diag.Code
	Message  string
	Line     int
	Text     string
	Notes    []string
}

// DiskCache stores payloads as msgpack files, with a small LRU in front.
// A nil *DiskCache is a valid cache that never hits.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
	mem *lru.Cache[Digest, *Payload]
}

// Open returns a cache rooted at $XDG_CACHE_HOME/app, falling back to
// ~/.cache/app.
func Open(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDir(filepath.Join(base, app))
}

// OpenDir returns a cache rooted at dir.
func OpenDir(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	mem, err := lru.New[Digest, *Payload](memEntries)
	if err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir, mem: mem}, nil
}

// Dir is the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "reports", key.String()+".mp")
}

// Put writes payload under key, replacing the file atomically.
func (c *DiskCache) Put(key Digest, payload *Payload) (err error) {
	if c == nil || payload == nil {
		return nil
	}
	payload.Schema = schemaVersion
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
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Rename(f.Name(), p); err != nil {
		return err
	}
	c.mem.Add(key, payload)
	return nil
}

// Get reads the payload stored under key. A payload of another schema is a
// miss.
func (c *DiskCache) Get(key Digest) (*Payload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	if p, ok := c.mem.Get(key); ok {
		return p, true, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var out Payload
	if err := msgpack.NewDecoder(f).Decode(&out); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	if out.Schema != schemaVersion {
		return nil, false, nil
	}
	for i, dp := range out.Diagnostics {
		if !dp.Severity.Valid() {
			return nil, false, fmt.Errorf("corrupt cache entry %s: diagnostic %d has severity %d", key, i, dp.Severity)
		}
	}
	c.mem.Add(key, &out)
	return &out, true, nil
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mem.Purge()
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

// FromBag converts the diagnostics of one input.
func FromBag(bag *diag.Bag) []DiagPayload {
	if bag == nil {
		return nil
	}
	out := make([]DiagPayload, 0, bag.Len())
	for _, d := range bag.Items() {
		dp := DiagPayload{
			Severity: d.Severity,
			Code:     d.Code,
			Message:  d.Message,
			Line:     d.Location.Line,
			Text:     d.Text,
		}
		for _, n := range d.Notes {
			dp.Notes = append(dp.Notes, n.Msg)
		}
		out = append(out, dp)
	}
	return out
}

// Replay reports the stored diagnostics against input.
func (p *Payload) Replay(input string, r diag.Reporter) {
	if p == nil || r == nil {
		return
	}
	for _, dp := range p.Diagnostics {
		d := diag.New(dp.Severity, dp.Code,
			diag.Location{Input: input, Line: dp.Line}, dp.Message)
		d.Text = dp.Text
		for _, n := range dp.Notes {
			d = d.WithNote(n)
		}
		r.Report(d)
	}
}
