// Package corpus streams (key, raw payload) records from snapshot files.
//
// A snapshot is newline-delimited: one client per line, either a bare JSON
// document or a "client-key<TAB>json" pair as emitted by the export jobs.
// Files may be gzip compressed
package corpus

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"churnscope/internal/platform/logger"
)

const (
	maxScanTokenSize = 32 * 1024 * 1024
	sampleRawMax     = 2048 // max bytes of raw JSON to log for the sample
)

// Record is one client's snapshot line
type Record struct {
	// Key identifies the client; synthesized from the line number when the
	// snapshot carries bare documents
	Key string

	// Raw is the unparsed payload document
	Raw []byte
}

// Reader streams Records from one snapshot file
type Reader struct {
	r       io.ReadCloser
	gz      *gzip.Reader
	sc      *bufio.Scanner
	err     error
	line    int
	records int
	bytes   int64
	sampled bool // logs exactly one sample raw line per snapshot
}

// Open opens a snapshot file, transparently decompressing .gz
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewReader(f, strings.HasSuffix(path, ".gz"))
}

// NewReader wraps an open stream. gzipped selects gzip decompression
func NewReader(r io.ReadCloser, gzipped bool) (*Reader, error) {
	rd := &Reader{r: r}
	var src io.Reader = r
	if gzipped {
		gz, err := gzip.NewReader(r)
		if err != nil {
			if cerr := r.Close(); cerr != nil {
				return nil, cerr
			}
			return nil, err
		}
		rd.gz = gz
		src = gz
	}
	sc := bufio.NewScanner(src)
	buf := make([]byte, 512*1024)
	sc.Buffer(buf, maxScanTokenSize)
	rd.sc = sc
	return rd, nil
}

// Next reads the next record; returns io.EOF when done.
// Blank lines are skipped; the raw bytes are copied out of the scanner
// buffer so callers may hold them across calls
func (rd *Reader) Next() (Record, error) {
	if rd.err != nil {
		return Record{}, rd.err
	}
	for {
		if !rd.sc.Scan() {
			if err := rd.sc.Err(); err != nil {
				rd.err = err
				return Record{}, err
			}
			rd.err = io.EOF
			return Record{}, io.EOF
		}
		rd.line++
		line := rd.sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		rec := splitLine(line, rd.line)
		rd.records++
		rd.bytes += int64(len(line) + 1) // include newline

		// log a single raw-line sample per snapshot
		if !rd.sampled {
			rd.sampled = true
			l := logger.Named("corpus")
			l.Debug().
				Int("line_bytes", len(line)).
				Str("sample_raw", truncateUTF8(rec.Raw, sampleRawMax)).
				Msg("corpus: sample raw line")
		}

		return rec, nil
	}
}

// splitLine separates an optional tab-delimited client key from the document.
// The tab only counts as a separator when it precedes the JSON body
func splitLine(line []byte, lineNo int) Record {
	if i := bytes.IndexByte(line, '\t'); i >= 0 && !bytes.ContainsAny(line[:i], "{[") {
		key := string(bytes.TrimSpace(line[:i]))
		raw := make([]byte, len(line)-i-1)
		copy(raw, line[i+1:])
		if key != "" {
			return Record{Key: key, Raw: raw}
		}
		return Record{Key: fmt.Sprintf("line-%d", lineNo), Raw: raw}
	}
	raw := make([]byte, len(line))
	copy(raw, line)
	return Record{Key: fmt.Sprintf("line-%d", lineNo), Raw: raw}
}

// Close closes the underlying stream
func (rd *Reader) Close() error {
	var first error
	if rd.gz != nil {
		if err := rd.gz.Close(); err != nil && !errors.Is(err, io.ErrClosedPipe) {
			first = err
		}
	}
	if rd.r != nil {
		if err := rd.r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Stats returns the records streamed and raw bytes read so far
func (rd *Reader) Stats() (records int, bytes int64) {
	return rd.records, rd.bytes
}

// truncateUTF8 returns a string made from b, truncated to at most max bytes
// without splitting a multibyte rune
func truncateUTF8(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	cut := b[:max]
	for len(cut) > 0 && (cut[len(cut)-1]&0xC0) == 0x80 {
		cut = cut[:len(cut)-1]
	}
	return string(cut)
}
