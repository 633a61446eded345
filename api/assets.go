// Package api loads the images a page samples, from disk or over http(s).
// Remote media is kept in the user's cache directory.
package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"runtime"

	"github.com/richinsley/goshaderdemos/logger"
	"go.uber.org/zap"

	// Blank imports for image decoders so image.Decode can handle them.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// LoadError reports a resource that could not be fetched or decoded.
type LoadError struct {
	Src string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Src, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

type headerTransport struct {
	Transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "https://github.com/richinsley/goshaderdemos")
	return t.Transport.RoundTrip(req)
}

// DefaultClient sets the showcase User-Agent on every request.
var DefaultClient = &http.Client{
	Transport: &headerTransport{Transport: http.DefaultTransport},
}

// Loader resolves texture sources. Relative paths are joined to Root.
// CacheDir may be empty to disable the media cache.
type Loader struct {
	Root     string
	CacheDir string
	Client   *http.Client
}

// NewLoader returns a loader rooted at root using the OS media cache.
func NewLoader(root string) *Loader {
	l := &Loader{Root: root, Client: DefaultClient}
	dir, err := CacheDir("media")
	if err != nil {
		logger.Log.Warn("Media cache disabled", zap.Error(err))
	} else {
		l.CacheDir = dir
	}
	return l
}

// Load fetches and decodes src.
func (l *Loader) Load(ctx context.Context, src string) (image.Image, error) {
	img, err := l.load(ctx, src)
	if err != nil {
		return nil, &LoadError{Src: src, Err: err}
	}
	return img, nil
}

func (l *Loader) load(ctx context.Context, src string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := url.Parse(src)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return l.fetch(ctx, u)
	}

	file := src
	if !filepath.IsAbs(file) {
		file = filepath.Join(l.Root, filepath.FromSlash(src))
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func (l *Loader) fetch(ctx context.Context, u *url.URL) (image.Image, error) {
	var cachePath string
	if l.CacheDir != "" {
		cachePath = filepath.Join(l.CacheDir, u.Host, cacheName(u))
		if f, err := os.Open(cachePath); err == nil {
			img, _, err := image.Decode(f)
			f.Close()
			if err == nil {
				return img, nil
			}
			logger.Log.Warn("Could not decode cached image, downloading again",
				zap.String("path", cachePath), zap.Error(err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad response status: %s", resp.Status)
	}

	// read fully so the bytes can be decoded and cached
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if cachePath != "" {
		if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err == nil {
			err = os.WriteFile(cachePath, data, 0o644)
		}
		if err != nil {
			logger.Log.Warn("Failed to save media to cache", zap.String("path", cachePath), zap.Error(err))
		}
	}
	logger.Log.Debug("Downloaded media", zap.String("url", u.String()), zap.Int("bytes", len(data)))
	return img, nil
}

// cacheName derives a file name from the whole URL, so media sharing a base
// name or differing only by query get separate entries.
func cacheName(u *url.URL) string {
	sum := sha256.Sum256([]byte(u.String()))
	return hex.EncodeToString(sum[:]) + path.Ext(u.Path)
}

// CacheDir returns the OS-specific cache directory for subdir, creating it.
func CacheDir(subdir string) (string, error) {
	var base string
	var err error

	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
		if base == "" {
			err = errors.New("LOCALAPPDATA environment variable not set")
		}
	case "darwin":
		home := os.Getenv("HOME")
		if home == "" {
			err = errors.New("HOME environment variable not set")
		} else {
			base = filepath.Join(home, "Library", "Caches")
		}
	default: // linux, bsd, etc.
		base = os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home := os.Getenv("HOME")
			if home == "" {
				err = errors.New("HOME environment variable not set")
			} else {
				base = filepath.Join(home, ".cache")
			}
		}
	}
	if err != nil {
		return "", err
	}

	dir := filepath.Join(base, "goshaderdemos", subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache directory at %s: %w", dir, err)
	}
	return dir, nil
}
