package api

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoadRelativeFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "noise"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "noise", "blue.png"), pngBytes(t, 4, 2), 0o644))

	l := &Loader{Root: root}
	img, err := l.Load(context.Background(), "noise/blue.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())
}

func TestLoadMissingFile(t *testing.T) {
	l := &Loader{Root: t.TempDir()}
	_, err := l.Load(context.Background(), "nope.png")
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "nope.png", le.Src)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadUndecodable(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.png"), []byte("not an image"), 0o644))
	_, err := (&Loader{Root: root}).Load(context.Background(), "a.png")
	assert.ErrorIs(t, err, image.ErrFormat)
}

func TestFetchCachesMedia(t *testing.T) {
	data := pngBytes(t, 8, 8)
	var hits atomic.Int32
	var agent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		agent.Store(r.Header.Get("User-Agent"))
		w.Write(data)
	}))
	defer srv.Close()

	l := &Loader{CacheDir: t.TempDir(), Client: &http.Client{Transport: &headerTransport{Transport: http.DefaultTransport}}}
	src := srv.URL + "/media/blue.png"

	img, err := l.Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Contains(t, agent.Load(), "goshaderdemos")

	_, err = l.Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second load is served from the cache")
}

func TestFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := (&Loader{}).Load(context.Background(), srv.URL+"/a.png")
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.ErrorContains(t, err, "404")
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Loader{}).Load(ctx, "a.png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCacheDirHonorsXDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CACHE_HOME is only read on unix-like systems")
	}
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)
	dir, err := CacheDir("media")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "goshaderdemos", "media"), dir)
	assert.DirExists(t, dir)
}

func pngWithRed(t *testing.T, red uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: red, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCacheKeepsSameNamedMediaApart(t *testing.T) {
	bodies := map[string][]byte{
		"/a/noise.png":     pngWithRed(t, 10),
		"/b/noise.png":     pngWithRed(t, 200),
		"/a/noise.png?v=2": pngWithRed(t, 77),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bodies[r.URL.RequestURI()])
	}))
	defer srv.Close()

	l := &Loader{CacheDir: t.TempDir()}
	red := func(p string) uint8 {
		img, err := l.Load(context.Background(), srv.URL+p)
		require.NoError(t, err, p)
		r, _, _, _ := img.At(0, 0).RGBA()
		return uint8(r >> 8)
	}
	// twice each, the second read comes from the cache
	for i := 0; i < 2; i++ {
		assert.Equal(t, uint8(10), red("/a/noise.png"))
		assert.Equal(t, uint8(200), red("/b/noise.png"))
		assert.Equal(t, uint8(77), red("/a/noise.png?v=2"))
	}
}
