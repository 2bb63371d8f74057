// Package trace records one compressed JSONL line per simulated tick so a run
// can be replayed and checked later.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

const DefaultTicksPerFile = 10000

type Entry struct {
	Tick     uint64   `json:"tick"`
	FrameNs  int64    `json:"frame_ns"`
	ScaledNs int64    `json:"scaled_ns"`
	Fired    []string `json:"fired,omitempty"`
	RngState uint64   `json:"rng_state"`
}

// Writer rotates files by tick range so file names do not depend on wall time.
type Writer struct {
	baseDir      string
	prefix       string
	ticksPerFile uint64

	mu        sync.Mutex
	fileStart uint64
	open      bool
	cleared   bool
	f         *os.File
	enc       *zstd.Encoder
	w         *bufio.Writer
}

func NewWriter(baseDir, prefix string, ticksPerFile uint64) *Writer {
	if ticksPerFile == 0 {
		ticksPerFile = DefaultTicksPerFile
	}
	return &Writer{
		baseDir:      baseDir,
		prefix:       prefix,
		ticksPerFile: ticksPerFile,
	}
}

func (w *Writer) WriteTick(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := e.Tick - e.Tick%w.ticksPerFile
	if !w.open || start != w.fileStart {
		if err := w.rotateLocked(start); err != nil {
			return err
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *Writer) rotateLocked(start uint64) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return err
	}
	if !w.cleared {
		if err := w.removeStaleLocked(); err != nil {
			return err
		}
		w.cleared = true
	}
	f, err := os.OpenFile(w.pathFor(start), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.fileStart = start
	w.open = true
	return nil
}

func (w *Writer) closeLocked() error {
	if !w.open {
		return nil
	}
	var err1 error
	if err := w.w.Flush(); err != nil {
		err1 = err
	}
	if err := w.enc.Close(); err != nil && err1 == nil {
		err1 = err
	}
	if err := w.f.Close(); err != nil && err1 == nil {
		err1 = err
	}
	w.f, w.enc, w.w = nil, nil, nil
	w.open = false
	return err1
}

// removeStaleLocked deletes files of an earlier run sharing this prefix so a
// reused directory only holds the current recording.
func (w *Writer) removeStaleLocked() error {
	stale, err := ListFiles(w.baseDir, w.prefix)
	if err != nil {
		return err
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale trace: %w", err)
		}
	}
	return nil
}

func (w *Writer) pathFor(start uint64) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%012d.jsonl.zst", w.prefix, start))
}

// ListFiles returns the trace files for prefix in tick order.
func ListFiles(dir, prefix string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, prefix+"-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

// ReadFile calls fn for every entry in path. A non-nil error from fn stops
// the scan and is returned as is.
func ReadFile(path string, fn func(Entry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%s: scan: %w", filepath.Base(path), err)
	}
	return nil
}
