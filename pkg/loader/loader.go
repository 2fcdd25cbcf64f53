// Package loader reads executive-order records from JSON or JSON Lines files
// and enforces the ingestion boundary: every record must carry at least one
// recognized category and a unique id. Forecast and impact are left raw so
// that the view engine reports malformed values where they are used.
package loader

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/eoview/pkg/model"
)

// DataEnvVar is the name of the environment variable overriding the data path.
const DataEnvVar = "EO_DATA"

// PreferredNames defines the priority order for looking up data files.
var PreferredNames = []string{"orders.json", "data.json", "orders.jsonl"}

// ErrNoData is returned when no data file can be located.
var ErrNoData = errors.New("no record data found")

// ErrInvalidRecord marks a record rejected at the ingestion boundary.
var ErrInvalidRecord = errors.New("invalid record")

// ResolveDataPath turns a user-supplied path into a data file path. EO_DATA
// wins when path is empty. Directories are searched with FindDataPath; the
// current directory is used when nothing else is given.
func ResolveDataPath(path string) (string, error) {
	if path == "" {
		path = os.Getenv(DataEnvVar)
	}
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
		path = wd
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w at %s", ErrNoData, path)
	}
	if info.IsDir() {
		return FindDataPath(path)
	}
	return path, nil
}

// FindDataPath locates the record file in dir. Preferred names win; otherwise
// the first non-empty .json or .jsonl file is used. Backups are skipped.
func FindDataPath(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read data directory: %w", err)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !IsDataFile(name) {
			continue
		}
		if strings.Contains(name, ".backup") || strings.Contains(name, ".orig") || strings.HasSuffix(name, "~") {
			continue
		}
		candidates = append(candidates, name)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoData, dir)
	}

	nonEmpty := func(name string) bool {
		info, err := os.Stat(filepath.Join(dir, name))
		return err == nil && info.Size() > 0
	}

	for _, preferred := range PreferredNames {
		for _, name := range candidates {
			if name == preferred && nonEmpty(name) {
				return filepath.Join(dir, name), nil
			}
		}
	}
	for _, name := range candidates {
		if nonEmpty(name) {
			return filepath.Join(dir, name), nil
		}
	}
	return filepath.Join(dir, candidates[0]), nil
}

// IsDataFile reports whether name has a record file extension.
func IsDataFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".json" || ext == ".jsonl"
}

// DefaultMaxBufferSize is the default buffer size for JSONL lines (10MB).
const DefaultMaxBufferSize = 1024 * 1024 * 10

// ParseOptions configures the behavior of ParseRecords.
type ParseOptions struct {
	// WarningHandler is called with warning messages (skipped records).
	// If nil, warnings are printed to os.Stderr.
	WarningHandler func(string)

	// BufferSize sets the maximum JSONL line size. Longer lines are skipped
	// with a warning. If 0, uses DefaultMaxBufferSize.
	BufferSize int

	// Vocabulary is the set of recognized categories. The zero value means
	// model.DefaultVocabulary().
	Vocabulary model.Vocabulary

	// Strict turns every skip into an error.
	Strict bool
}

func (o ParseOptions) vocabulary() model.Vocabulary {
	if o.Vocabulary.Len() == 0 {
		return model.DefaultVocabulary()
	}
	return o.Vocabulary
}

func (o ParseOptions) warner() func(string) {
	if o.WarningHandler != nil {
		return o.WarningHandler
	}
	return func(msg string) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	}
}

// LoadRecords resolves path and loads the records found there.
func LoadRecords(path string) ([]model.Record, error) {
	resolved, err := ResolveDataPath(path)
	if err != nil {
		return nil, err
	}
	return LoadRecordsFromFile(resolved)
}

// LoadRecordsFromFile reads records from a JSON or JSONL file.
func LoadRecordsFromFile(path string) ([]model.Record, error) {
	return LoadRecordsFromFileWithOptions(path, ParseOptions{})
}

// LoadRecordsFromFileWithOptions reads records from a file with custom options.
func LoadRecordsFromFileWithOptions(path string, opts ParseOptions) ([]model.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNoData, path)
		}
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}
	defer file.Close()

	return ParseRecordsWithOptions(file, opts)
}

// ParseRecords parses records from r with default options.
func ParseRecords(r io.Reader) ([]model.Record, error) {
	return ParseRecordsWithOptions(r, ParseOptions{})
}

// ParseRecordsWithOptions parses either a JSON array of records or one
// record per line. The format is detected from the first non-blank byte.
func ParseRecordsWithOptions(r io.Reader, opts ParseOptions) ([]model.Record, error) {
	maxCapacity := opts.BufferSize
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxBufferSize
	}
	reader := bufio.NewReaderSize(r, maxCapacity)

	if err := skipBOM(reader); err != nil {
		return nil, err
	}
	first, err := peekNonSpace(reader)
	if err != nil {
		if err == io.EOF {
			return []model.Record{}, nil
		}
		return nil, fmt.Errorf("error reading records: %w", err)
	}

	b := newBoundary(opts)
	if first == '[' {
		err = parseArray(reader, b)
	} else {
		err = parseLines(reader, maxCapacity, b)
	}
	if err != nil {
		return nil, err
	}
	return b.records, nil
}

// Admit applies the ingestion checks to records that did not come through
// the JSON decoder, such as rows read from a database.
func Admit(recs []model.Record, opts ParseOptions) ([]model.Record, error) {
	b := newBoundary(opts)
	b.records = make([]model.Record, 0, len(recs))
	for _, rec := range recs {
		rec.Categories = append([]model.Category(nil), rec.Categories...)
		if err := b.check(&rec); err != nil {
			if err := b.skip(fmt.Sprintf("skipping record %d: %v", rec.ID, err)); err != nil {
				return nil, err
			}
			continue
		}
		b.accept(rec)
	}
	return b.records, nil
}

func parseArray(r io.Reader, b *boundary) error {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return fmt.Errorf("error decoding record array: %w", err)
	}
	b.records = make([]model.Record, 0, len(raw))
	for i, msg := range raw {
		if err := b.add(msg, fmt.Sprintf("element %d", i)); err != nil {
			return err
		}
	}
	return nil
}

func parseLines(r *bufio.Reader, maxCapacity int, b *boundary) error {
	lineNum := 0
	for {
		lineNum++
		line, isPrefix, err := r.ReadLine()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("error reading records stream at line %d: %w", lineNum, err)
		}

		if isPrefix {
			if err := b.skip(fmt.Sprintf("skipping line %d: line too long (exceeds %d bytes)", lineNum, maxCapacity)); err != nil {
				return err
			}
			for isPrefix {
				_, isPrefix, err = r.ReadLine()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return fmt.Errorf("error skipping long line at line %d: %w", lineNum, err)
				}
			}
			continue
		}

		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if err := b.add(line, fmt.Sprintf("line %d", lineNum)); err != nil {
			return err
		}
	}
}

// boundary accumulates accepted records and applies the ingestion checks.
type boundary struct {
	vocab   model.Vocabulary
	strict  bool
	warn    func(string)
	seen    map[int]bool
	records []model.Record
}

func newBoundary(opts ParseOptions) *boundary {
	return &boundary{
		vocab:  opts.vocabulary(),
		strict: opts.Strict,
		warn:   opts.warner(),
		seen:   make(map[int]bool),
	}
}

func (b *boundary) add(data []byte, where string) error {
	var rec model.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return b.skip(fmt.Sprintf("skipping malformed JSON at %s: %v", where, err))
	}
	if err := b.check(&rec); err != nil {
		return b.skip(fmt.Sprintf("skipping record at %s: %v", where, err))
	}
	b.accept(rec)
	return nil
}

func (b *boundary) accept(rec model.Record) {
	b.seen[rec.ID] = true
	b.records = append(b.records, rec)
}

func (b *boundary) skip(msg string) error {
	if b.strict {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.TrimPrefix(msg, "skipping "))
	}
	b.warn(msg)
	return nil
}

// check normalizes category tokens in place and validates the record.
func (b *boundary) check(rec *model.Record) error {
	if b.seen[rec.ID] {
		return fmt.Errorf("duplicate id %d", rec.ID)
	}
	if len(rec.Categories) == 0 {
		return fmt.Errorf("record %d has no categories", rec.ID)
	}
	for i, c := range rec.Categories {
		n := model.NormalizeCategory(string(c))
		if !b.vocab.Contains(n) {
			return fmt.Errorf("record %d has unknown category %q", rec.ID, string(c))
		}
		rec.Categories[i] = n
	}
	return nil
}

func skipBOM(r *bufio.Reader) error {
	head, err := r.Peek(3)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return fmt.Errorf("error reading records: %w", err)
	}
	if bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = r.Discard(3)
	}
	return nil
}

func peekNonSpace(r *bufio.Reader) (byte, error) {
	for {
		c, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := r.UnreadByte(); err != nil {
			return 0, err
		}
		return c, nil
	}
}
