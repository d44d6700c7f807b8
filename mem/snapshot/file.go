package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joshuapare/poolkit/internal/buf"
	"github.com/joshuapare/poolkit/internal/mmap"
	"github.com/joshuapare/poolkit/mem/pool"
)

// Write streams the snapshot of p to w without building the image in memory.
func Write(w io.Writer, p *pool.Pool) error {
	h, order, err := headerOf(p)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	scratch := h.append(make([]byte, 0, HeaderSize))
	for _, i := range order {
		scratch = buf.AppendU32LE(scratch, uint32(i))
	}
	if _, err := bw.Write(scratch); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}
	if _, err := bw.Write(p.Bytes()); err != nil {
		return fmt.Errorf("snapshot: write region: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("snapshot: flush: %w", err)
	}
	return nil
}

// Save writes the snapshot of p to path atomically via temp file + rename.
func Save(path string, p *pool.Pool) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".poolkit-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := Write(tmpFile, p); err != nil {
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	tmpFile = nil

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load maps the snapshot file at path and decodes it into a new pool.
func Load(path string, opts ...pool.Option) (*pool.Pool, error) {
	data, release, err := mmap.MapFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: load %s: %w", path, err)
	}
	defer func() { _ = release() }()
	return Decode(data, opts...)
}

// Stat maps the snapshot file at path and returns its header.
func Stat(path string) (Header, error) {
	data, release, err := mmap.MapFile(path)
	if err != nil {
		return Header{}, fmt.Errorf("snapshot: stat %s: %w", path, err)
	}
	defer func() { _ = release() }()
	return ParseHeader(data)
}
