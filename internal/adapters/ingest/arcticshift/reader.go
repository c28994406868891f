// Package arcticshift streams Arctic Shift subreddit dumps (JSONL, optionally
// zstd or gzip compressed) as cleaned records
package arcticshift

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	perr "subshift/internal/platform/errors"
	"subshift/internal/platform/logger"

	"github.com/klauspost/compress/zstd"
)

const (
	maxScanTokenSize = 32 * 1024 * 1024
	// Arctic Shift zstd frames use a long window
	zstdMaxWindow = 1 << 31
)

// Reader yields Records from one dump file
type Reader struct {
	kind      Kind
	community string

	closers []io.Closer
	zr      *zstd.Decoder
	sc      *bufio.Scanner
	err     error

	records   int
	skipped   int
	malformed int
}

// DumpPath finds r_<community>_<kind>.jsonl in dir, preferring .zst then .gz then plain
func DumpPath(dir, community string, kind Kind) (string, error) {
	base := filepath.Join(dir, fmt.Sprintf("r_%s_%s.jsonl", community, kind))
	for _, p := range []string{base + ".zst", base + ".gz", base} {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", perr.NotFoundf("arcticshift: no %s dump for r/%s in %s", kind, community, dir)
}

// Open opens path and picks the decompressor from its extension
func Open(path string, kind Kind, community string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, perr.Wrapf(err, perr.ErrorCodeNotFound, "arcticshift open %s", path)
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeIO, "arcticshift open %s", path)
	}
	rd, err := NewReader(f, compressionOf(path), kind, community)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return rd, nil
}

// Compression names the stream encoding
type Compression string

const (
	None Compression = ""
	Gzip Compression = "gzip"
	Zstd Compression = "zstd"
)

func compressionOf(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return Zstd
	case ".gz":
		return Gzip
	default:
		return None
	}
}

// NewReader wraps r. community overrides the subreddit field when non-empty
func NewReader(r io.ReadCloser, c Compression, kind Kind, community string) (*Reader, error) {
	rd := &Reader{kind: kind, community: community, closers: []io.Closer{r}}
	var src io.Reader = r
	switch c {
	case Gzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeIO, "arcticshift gzip header")
		}
		rd.closers = append([]io.Closer{gz}, rd.closers...)
		src = gz
	case Zstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderMaxWindow(zstdMaxWindow), zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeIO, "arcticshift zstd init")
		}
		rd.zr = zr
		src = zr
	}
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 512*1024), maxScanTokenSize)
	rd.sc = sc
	return rd, nil
}

// Next returns the next kept record; io.EOF when the dump is exhausted.
// Malformed lines and deleted authors are skipped and counted.
func (rd *Reader) Next() (Record, error) {
	if rd.err != nil {
		return Record{}, rd.err
	}
	for rd.sc.Scan() {
		line := rd.sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		r, err := decode(line)
		if err != nil {
			rd.malformed++
			if rd.malformed == 1 {
				logger.Named("arcticshift").Debug().Err(err).Str("kind", string(rd.kind)).Msg("skipping malformed line")
			}
			continue
		}
		rec, ok := clean(r, rd.kind, rd.community)
		if !ok {
			rd.skipped++
			continue
		}
		rd.records++
		return rec, nil
	}
	if err := rd.sc.Err(); err != nil {
		rd.err = perr.Wrap(err, perr.ErrorCodeIO, "arcticshift scan")
		return Record{}, rd.err
	}
	rd.err = io.EOF
	return Record{}, io.EOF
}

// Stats reports kept, skipped (deleted) and malformed line counts so far
func (rd *Reader) Stats() (records, skipped, malformed int) {
	return rd.records, rd.skipped, rd.malformed
}

// Close releases the decompressor and the underlying file
func (rd *Reader) Close() error {
	if rd.zr != nil {
		rd.zr.Close()
	}
	var first error
	for _, c := range rd.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
