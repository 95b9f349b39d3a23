package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

// openSessionLog backs the zstd:// zap sink. The URL path names the log file
// and an optional level query parameter selects the encoder level, e.g.
// zstd:///var/log/mapsroute.zst?level=better. Each process appends one zstd
// frame; concatenated frames read back as a single stream.
func openSessionLog(u *url.URL) (zap.Sink, error) {
	level := zstd.SpeedFastest
	if name := u.Query().Get("level"); name != "" {
		ok, l := zstd.EncoderLevelFromString(name)
		if !ok {
			return nil, fmt.Errorf("unknown zstd level %q", name)
		}
		level = l
	}

	if err := setAsideDamagedLog(u.Path); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(u.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(file, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	return &sessionLog{file: file, enc: enc}, nil
}

// setAsideDamagedLog renames a log that no longer decodes, such as one left
// with a half-written frame by a killed process, so new frames are not
// appended behind unreadable bytes. The damaged copy keeps the .zst suffix so
// rotation and -clean-log still manage it.
func setAsideDamagedLog(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 || decodes(path) {
		return nil
	}
	if err := os.Rename(path, damagedLogPath(path)); err != nil {
		return fmt.Errorf("failed to set aside damaged log: %w", err)
	}
	return nil
}

func damagedLogPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".damaged" + ext
}

// decodes reports whether every frame in path decompresses cleanly.
func decodes(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() {
		_ = file.Close()
	}()

	dec, err := zstd.NewReader(file, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return false
	}
	defer dec.Close()

	_, err = io.Copy(io.Discard, dec)
	return err == nil
}

type sessionLog struct {
	mu   sync.Mutex
	file *os.File
	enc  *zstd.Encoder
}

// Write reports len(p) on success regardless of the compressed size.
func (l *sessionLog) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.enc.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (l *sessionLog) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.enc.Flush(); err != nil {
		return err
	}
	return l.file.Sync()
}

func (l *sessionLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return errors.Join(l.enc.Close(), l.file.Close())
}
