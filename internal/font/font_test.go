package font

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ledgfx/internal/errs"
)

// testGlyph produces a distinct 5x7 pattern per rune.
func testGlyph(r rune) Bitmap {
	b := Bitmap{Width: 5, Height: 7, Rows: make([]uint16, 7)}
	for y := range b.Rows {
		b.Rows[y] = uint16((int(r) + y*3) & 0x1F)
	}
	return b
}

func writeFont(t *testing.T, runes []rune) string {
	t.Helper()
	glyphs := map[rune]Bitmap{}
	for _, r := range runes {
		glyphs[r] = testGlyph(r)
	}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, 5, 7, glyphs))
	p := filepath.Join(t.TempDir(), "test.lgf")
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0o644))
	return p
}

func sampleRunes() []rune {
	rs := []rune{}
	for r := rune(0x20); r <= 0x7E; r++ {
		rs = append(rs, r)
	}
	return append(rs, 'é', 'Ω', '€', '☃')
}

func TestLoadAndLookup(t *testing.T) {
	for _, pre := range []bool{false, true} {
		f, err := Load(writeFont(t, sampleRunes()), CacheConfig{PrecomputeASCII: pre})
		require.NoError(t, err)

		w, h := f.Size()
		assert.Equal(t, 5, w)
		assert.Equal(t, 7, h)

		for _, r := range []rune{'A', 'z', ' ', 'Ω', '☃'} {
			b, err := f.Glyph(r)
			require.NoError(t, err)
			assert.Equal(t, testGlyph(r), b, "glyph %q", r)
		}
		_, err = f.Glyph('中')
		assert.True(t, errors.Is(err, errs.ErrNotFound))
		assert.True(t, f.HasGlyph('€'))
		assert.False(t, f.HasGlyph('中'))
		require.NoError(t, f.Close())
	}
}

func TestCacheEvictionRereadsFromDisk(t *testing.T) {
	f, err := Load(writeFont(t, sampleRunes()), CacheConfig{Capacity: 2})
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Glyph('A')
	require.NoError(t, err)
	_, err = f.Glyph('A')
	require.NoError(t, err)
	st := f.Stats()
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(1), st.Misses)

	_, _ = f.Glyph('B')
	_, _ = f.Glyph('C') // evicts A
	assert.Equal(t, 2, f.Stats().Cached)

	before := f.Stats().Misses
	b, err := f.Glyph('A')
	require.NoError(t, err)
	assert.Equal(t, before+1, f.Stats().Misses)
	assert.Equal(t, testGlyph('A'), b)
}

func TestLRUKeepsRecentlyUsed(t *testing.T) {
	f, err := Load(writeFont(t, sampleRunes()), CacheConfig{Capacity: 2})
	require.NoError(t, err)
	defer f.Close()

	_, _ = f.Glyph('A')
	_, _ = f.Glyph('B')
	_, _ = f.Glyph('A') // A is now most recent
	_, _ = f.Glyph('C') // evicts B
	hits := f.Stats().Hits
	_, _ = f.Glyph('A')
	assert.Equal(t, hits+1, f.Stats().Hits)
}

func TestLoadRejectsCorruptFiles(t *testing.T) {
	good, err := os.ReadFile(writeFont(t, []rune{'A'}))
	require.NoError(t, err)

	cases := map[string]func([]byte) []byte{
		"magic":   func(b []byte) []byte { b[0] = 'X'; return b },
		"version": func(b []byte) []byte { b[4] = 9; return b },
		"width":   func(b []byte) []byte { b[5] = 17; return b },
		"index":   func(b []byte) []byte { b[12] = 0xFF; b[13] = 0xFF; return b },
		"short":   func(b []byte) []byte { return b[:10] },
	}
	for name, mut := range cases {
		t.Run(name, func(t *testing.T) {
			data := mut(append([]byte(nil), good...))
			p := filepath.Join(t.TempDir(), "bad.lgf")
			require.NoError(t, os.WriteFile(p, data, 0o644))
			f, err := Load(p, CacheConfig{})
			assert.Nil(t, f)
			assert.True(t, errors.Is(err, errs.ErrFormat), "got %v", err)
		})
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.lgf"), CacheConfig{})
	assert.True(t, errors.Is(err, errs.ErrIO))
}

func TestClosedFont(t *testing.T) {
	f, err := Load(writeFont(t, []rune{'A'}), CacheConfig{})
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	_, err = f.Glyph('A')
	assert.Error(t, err)
	assert.False(t, f.HasGlyph('A'))
}

func TestInkWidth(t *testing.T) {
	b := Bitmap{Width: 5, Height: 2, Rows: []uint16{0b10000, 0b01100}}
	assert.Equal(t, 3, b.InkWidth())
	assert.True(t, b.Lit(0, 0))
	assert.True(t, b.Lit(2, 1))
	assert.False(t, b.Lit(3, 1))
	assert.Equal(t, 0, Bitmap{Width: 5, Height: 1, Rows: []uint16{0}}.InkWidth())
	assert.Equal(t, b, decode(encode(b), 5, 2))
}
