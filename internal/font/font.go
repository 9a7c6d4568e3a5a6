// Package font loads indexed bitmap fonts and serves decoded glyphs through a
// bounded LRU cache. Only cache misses touch the backing file.
package font

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledgfx/internal/errs"
)

const (
	DefaultCacheSize = 64
	asciiFirst       = 0x20
	asciiLast        = 0x7E
)

// CacheConfig tunes glyph caching for a loaded font.
type CacheConfig struct {
	Capacity        int
	PrecomputeASCII bool
}

// Stats are cumulative lookup counters.
type Stats struct {
	Hits     uint64
	Misses   uint64
	Cached   int
	Capacity int
}

// ReaderAtCloser is the backing store of a font.
type ReaderAtCloser interface {
	io.ReaderAt
	io.Closer
}

// Font is a loaded bitmap font. Safe for concurrent use.
type Font struct {
	path string
	hdr  header
	size int64

	mu     sync.Mutex
	r      ReaderAtCloser
	cache  *lru
	ascii  *[asciiLast - asciiFirst + 1]uint32 // glyph offsets; 0 = absent
	hits   uint64
	misses uint64
}

// Load opens and validates a font file.
func Load(path string, cfg CacheConfig) (*Font, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open font %s: %v: %w", path, err, errs.ErrIO)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat font %s: %v: %w", path, err, errs.ErrIO)
	}
	fnt, err := New(f, st.Size(), cfg)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("font %s: %w", path, err)
	}
	fnt.path = path
	log.Debug().Str("font", path).Int("glyphs", int(fnt.hdr.glyphCount)).
		Int("w", int(fnt.hdr.width)).Int("h", int(fnt.hdr.height)).Msg("font loaded")
	return fnt, nil
}

// New builds a Font over r, which must hold size bytes. The font takes ownership of r.
func New(r ReaderAtCloser, size int64, cfg CacheConfig) (*Font, error) {
	buf := make([]byte, HeaderSize)
	if _, err := r.ReadAt(buf, 0); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("short header: %w", errs.ErrFormat)
		}
		return nil, fmt.Errorf("read header: %v: %w", err, errs.ErrIO)
	}
	hdr, err := parseHeader(buf)
	if err != nil {
		return nil, err
	}
	indexEnd := int64(hdr.indexOffset) + int64(hdr.glyphCount)*EntrySize
	if int64(hdr.indexOffset) < HeaderSize || indexEnd > size {
		return nil, fmt.Errorf("index [%d,%d) outside file of %d bytes: %w", hdr.indexOffset, indexEnd, size, errs.ErrFormat)
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCacheSize
	}
	f := &Font{hdr: hdr, size: size, r: r, cache: newLRU(cfg.Capacity)}
	if cfg.PrecomputeASCII {
		if err := f.buildASCII(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *Font) buildASCII() error {
	var idx [asciiLast - asciiFirst + 1]uint32
	for cp := rune(asciiFirst); cp <= asciiLast; cp++ {
		off, ok, err := f.search(cp)
		if err != nil {
			return err
		}
		if ok {
			idx[cp-asciiFirst] = off
		}
	}
	f.ascii = &idx
	return nil
}

// Path is the file the font was loaded from, if any.
func (f *Font) Path() string { return f.path }

// Size returns the glyph cell size.
func (f *Font) Size() (w, h int) { return int(f.hdr.width), int(f.hdr.height) }

// GlyphCount is the number of glyphs in the file.
func (f *Font) GlyphCount() int { return int(f.hdr.glyphCount) }

// Glyph returns the decoded bitmap for r.
func (f *Font) Glyph(r rune) (Bitmap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.r == nil {
		return Bitmap{}, fmt.Errorf("font closed: %w", errs.ErrInvalidArgument)
	}
	if b, ok := f.cache.Get(r); ok {
		f.hits++
		return b, nil
	}
	f.misses++

	off, ok, err := f.offset(r)
	if err != nil {
		return Bitmap{}, err
	}
	if !ok {
		return Bitmap{}, fmt.Errorf("glyph %U: %w", r, errs.ErrNotFound)
	}
	w, h := int(f.hdr.width), int(f.hdr.height)
	data := make([]byte, glyphBytes(w, h))
	if int64(off)+int64(len(data)) > f.size {
		return Bitmap{}, fmt.Errorf("glyph %U at %d past end of file: %w", r, off, errs.ErrFormat)
	}
	if _, err := f.r.ReadAt(data, int64(off)); err != nil {
		return Bitmap{}, fmt.Errorf("read glyph %U: %v: %w", r, err, errs.ErrIO)
	}
	b := decode(data, w, h)
	f.cache.Put(r, b)
	return b, nil
}

// HasGlyph reports whether the font holds r, without decoding it.
func (f *Font) HasGlyph(r rune) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.r == nil {
		return false
	}
	if f.cache.Contains(r) {
		return true
	}
	_, ok, err := f.offset(r)
	return err == nil && ok
}

func (f *Font) offset(r rune) (uint32, bool, error) {
	if f.ascii != nil && r >= asciiFirst && r <= asciiLast {
		off := f.ascii[r-asciiFirst]
		return off, off != 0, nil
	}
	return f.search(r)
}

// search binary-searches the on-disk index.
func (f *Font) search(r rune) (uint32, bool, error) {
	entry := make([]byte, EntrySize)
	lo, hi := 0, int(f.hdr.glyphCount)-1
	for lo <= hi {
		mid := int(uint(lo+hi) >> 1)
		pos := int64(f.hdr.indexOffset) + int64(mid)*EntrySize
		if _, err := f.r.ReadAt(entry, pos); err != nil {
			return 0, false, fmt.Errorf("read index entry %d: %v: %w", mid, err, errs.ErrIO)
		}
		cp := rune(binary.LittleEndian.Uint32(entry[0:4]))
		switch {
		case cp == r:
			return binary.LittleEndian.Uint32(entry[4:8]), true, nil
		case cp < r:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return 0, false, nil
}

func (f *Font) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Stats{Hits: f.hits, Misses: f.misses, Cached: f.cache.Len(), Capacity: f.cache.capacity}
}

// ClearCache drops decoded glyphs; counters are kept.
func (f *Font) ClearCache() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache.Clear()
}

// Close releases the backing file and all cached glyphs. Further lookups fail.
func (f *Font) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.r == nil {
		return nil
	}
	err := f.r.Close()
	f.r = nil
	f.cache.Clear()
	f.ascii = nil
	return err
}
