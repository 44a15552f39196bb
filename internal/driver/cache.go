package driver

import (
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"remedy/internal/diag"
	"remedy/internal/source"
)

// Bump when the payload format changes; older entries are ignored.
const diskCacheSchemaVersion uint16 = 1

// DiskCache persists diagnosis results keyed by scenario content digest.
// Spans are stored as offsets only; they are rebound to the FileID of the
// current load when a hit is materialized. Thread-safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

type cachedNote struct {
	Start uint32
	End   uint32
	Msg   string
}

type cachedFix struct {
	Kind   string
	Title  string
	Detail string
}

type cachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
	Notes    []cachedNote
	Fixes    []cachedFix
}

type diskPayload struct {
	Schema uint16
	Title  string
	Items  []cachedDiagnostic
}

// OpenDiskCache initializes a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app, "diag")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key [32]byte) string {
	return filepath.Join(c.dir, hex.EncodeToString(key[:])+".msgpack")
}

// Load returns the cached bag for key, rebinding spans to file.
func (c *DiskCache) Load(key [32]byte, file source.FileID) (*diag.Bag, string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	raw, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return nil, "", false
	}
	var payload diskPayload
	if err := msgpack.Unmarshal(raw, &payload); err != nil {
		return nil, "", false
	}
	if payload.Schema != diskCacheSchemaVersion {
		return nil, "", false
	}

	bag := diag.NewBag(len(payload.Items))
	for _, item := range payload.Items {
		d := diag.Diagnostic{
			Severity: diag.Severity(item.Severity),
			Code:     diag.Code(item.Code),
			Message:  item.Message,
			Primary:  source.Span{File: file, Start: item.Start, End: item.End},
		}
		for _, n := range item.Notes {
			d.Notes = append(d.Notes, diag.Note{
				Span: source.Span{File: file, Start: n.Start, End: n.End},
				Msg:  n.Msg,
			})
		}
		for _, f := range item.Fixes {
			d.Fixes = append(d.Fixes, diag.Fix{Kind: f.Kind, Title: f.Title, Detail: f.Detail})
		}
		bag.Add(d)
	}
	return bag, payload.Title, true
}

// Store writes the bag for key. The write is atomic (temp file + rename) so
// concurrent readers never observe a torn entry.
func (c *DiskCache) Store(key [32]byte, title string, bag *diag.Bag) error {
	payload := diskPayload{
		Schema: diskCacheSchemaVersion,
		Title:  title,
		Items:  make([]cachedDiagnostic, 0, bag.Len()),
	}
	for _, d := range bag.Items() {
		item := cachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			item.Notes = append(item.Notes, cachedNote{Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		for _, f := range d.Fixes {
			item.Fixes = append(item.Fixes, cachedFix{Kind: f.Kind, Title: f.Title, Detail: f.Detail})
		}
		payload.Items = append(payload.Items, item)
	}

	raw, err := msgpack.Marshal(&payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tmp, err := os.CreateTemp(c.dir, "diag-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, c.pathFor(key))
}

// Clear removes every cached entry.
func (c *DiskCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
