package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Mavwarf/soundboard/internal/ffmpeg"
)

var (
	// ErrAssetNotFound means the requested file does not exist under the
	// sounds directory (or the name tried to escape it).
	ErrAssetNotFound = errors.New("asset not found")
	// ErrDecodeFailure means the file exists but could not be decoded:
	// corrupt, unsupported, too large or too long.
	ErrDecodeFailure = errors.New("decode failure")
)

const (
	// DefaultMaxDuration is the longest clip the Loader accepts.
	DefaultMaxDuration = 60 * time.Second
	// DefaultFFmpegTimeout bounds an external decode.
	DefaultFFmpegTimeout = 30 * time.Second
)

// Loader reads sound files from a fixed root directory and memoizes the
// decoded buffers for the life of the process. Files are assumed not to
// change while the soundboard runs; there is no invalidation.
//
// It is safe to call Load from multiple goroutines. Loads of different files
// proceed in parallel; concurrent loads of the same file decode it once.
type Loader struct {
	root          string
	maxBytes      int64
	maxDuration   time.Duration
	ffmpegTimeout time.Duration
	log           *slog.Logger

	mu    sync.RWMutex
	cache map[string]*Buffer
	group singleflight.Group
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithMaxBytes caps the size of a file (or of ffmpeg output) that will be read.
func WithMaxBytes(n int64) LoaderOption {
	return func(l *Loader) { l.maxBytes = n }
}

// WithMaxDuration caps the decoded length of a clip.
func WithMaxDuration(d time.Duration) LoaderOption {
	return func(l *Loader) { l.maxDuration = d }
}

// WithFFmpegTimeout bounds external decodes.
func WithFFmpegTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) { l.ffmpegTimeout = d }
}

// WithLogger sets the logger used for cache and decode diagnostics.
func WithLogger(log *slog.Logger) LoaderOption {
	return func(l *Loader) { l.log = log }
}

// NewLoader creates a Loader rooted at dir.
func NewLoader(dir string, opts ...LoaderOption) *Loader {
	l := &Loader{
		root:          dir,
		maxBytes:      maxWAVSize,
		maxDuration:   DefaultMaxDuration,
		ffmpegTimeout: DefaultFFmpegTimeout,
		log:           slog.Default(),
		cache:         make(map[string]*Buffer),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Root returns the sounds directory.
func (l *Loader) Root() string {
	return l.root
}

// Cached returns the number of memoized assets.
func (l *Loader) Cached() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cache)
}

// Resolve maps a sound name to its path under the root. Names that would
// leave the root (absolute paths, "..") are reported as not found.
func (l *Loader) Resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrAssetNotFound)
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside the sounds directory", ErrAssetNotFound, name)
	}
	return filepath.Join(l.root, clean), nil
}

// Load returns the decoded asset for name. Built-in clip names are served
// without disk access. Errors wrap ErrAssetNotFound or ErrDecodeFailure.
func (l *Loader) Load(name string) (*Buffer, error) {
	key := ""
	if !IsAudioFile(name) {
		key = "builtin:" + name
		if buf := l.cached(key); buf != nil {
			return buf, nil
		}
		buf, ok, err := Builtin(name)
		if ok {
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, name, err)
			}
			l.store(key, buf)
			return buf, nil
		}
	}

	path, err := l.Resolve(name)
	if err != nil {
		return nil, err
	}
	if buf := l.cached(path); buf != nil {
		return buf, nil
	}

	v, err, shared := l.group.Do(path, func() (any, error) {
		if buf := l.cached(path); buf != nil {
			return buf, nil
		}
		start := time.Now()
		buf, err := l.decodeFile(path)
		if err != nil {
			return nil, err
		}
		buf.Name = name
		l.store(path, buf)
		l.log.Debug("asset decoded",
			"sound", name,
			"path", path,
			"rate", buf.SampleRate,
			"channels", buf.Channels,
			"duration", buf.Duration(),
			"took", time.Since(start))
		return buf, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		l.log.Debug("asset decode shared", "sound", name)
	}
	return v.(*Buffer), nil
}

// Preload decodes every named asset up front so the first trigger of each
// does not pay for disk I/O. Failures are logged and skipped.
func (l *Loader) Preload(names []string) int {
	loaded := 0
	for _, name := range names {
		if _, err := l.Load(name); err != nil {
			l.log.Warn("preload failed", "sound", name, "err", err)
			continue
		}
		loaded++
	}
	return loaded
}

func (l *Loader) cached(key string) *Buffer {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cache[key]
}

func (l *Loader) store(key string, buf *Buffer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[key] = buf
}

func (l *Loader) decodeFile(path string) (*Buffer, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrAssetNotFound, path)
	}
	if info.Size() > l.maxBytes {
		return nil, fmt.Errorf("%w: %s: file too large (%d bytes, max %d)", ErrDecodeFailure, path, info.Size(), l.maxBytes)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if externalFormats[ext] {
		ctx, cancel := context.WithTimeout(context.Background(), l.ffmpegTimeout)
		defer cancel()
		data, err := ffmpeg.ToWAV(ctx, path, l.maxBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, path, err)
		}
		ext = ".wav"
		return l.decode(path, ext, data)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, path, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, path, err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: %s: file grew past %d bytes while reading", ErrDecodeFailure, path, l.maxBytes)
	}
	return l.decode(path, ext, data)
}

func (l *Loader) decode(path, ext string, data []byte) (buf *Buffer, err error) {
	// Third-party decoders panic on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("%w: %s: decoder panic: %v", ErrDecodeFailure, path, r)
		}
	}()
	buf, err = decodeBytes(ext, data, l.maxDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, path, err)
	}
	return buf, nil
}
