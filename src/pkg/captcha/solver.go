package captcha

import (
	"errors"
	"fmt"
	"image"
	"maps"
	"sync"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"golang.org/x/sync/singleflight"

	"chat-captcha/src/pkg/ocr"
)

// Reader is the recognition pipeline as seen by the Solver. *ocr.Pipeline implements it.
type Reader interface {
	Run(img image.Image) (ocr.Result, error)
}

// Stats counts what the Solver has done since it was built.
type Stats struct {
	Hits               int `json:"hits"`
	Misses             int `json:"misses"`
	Solved             int `json:"solved"`
	DecodeFailures     int `json:"decode_failures"`
	FormatMismatches   int `json:"format_mismatches"`
	ValidationFailures int `json:"validation_failures"`
	CacheSize          int `json:"cache_size"`
}

/*
Solver is the entry point for callers that need a captcha read.

It memoizes solutions by fingerprint, persists them to Config.CacheFile every
Config.FlushEvery new entries, and hands each fresh solution to its sink as a
training sample. A Solver is safe for concurrent use; the recognition pipeline
runs outside any lock and concurrent solves of the same captcha share one run.
*/
type Solver struct {
	cfg    Config
	reader Reader
	sink   ocr.Sink

	mu          sync.Mutex
	initialized bool
	cache       map[string]string
	stats       Stats

	flushMu sync.Mutex
	flight  singleflight.Group
}

type Option func(*Solver)

// WithReader replaces the default template pipeline.
func WithReader(reader Reader) Option {
	return func(s *Solver) { s.reader = reader }
}

// WithSink replaces the default FileSink built from Config.
func WithSink(sink ocr.Sink) Option {
	return func(s *Solver) { s.sink = sink }
}

// NewSolver builds a Solver. Unless WithReader is given, it reads captchas with
// an ocr.Pipeline over the templates in ocrCfg.TemplateDir.
func NewSolver(cfg Config, ocrCfg ocr.Config, opts ...Option) *Solver {
	trainingDir := cfg.TrainingDir
	if cfg.DisableTraining {
		trainingDir = ""
	}

	s := &Solver{
		cfg: cfg,
		sink: ocr.FileSink{
			DebugDir:    cfg.DebugDir,
			TrainingDir: trainingDir,
			Debug:       cfg.DebugArtifacts,
		},
		cache: map[string]string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sink == nil {
		s.sink = ocr.NopSink{}
	}
	if s.reader == nil {
		s.reader = ocr.NewPipeline(ocrCfg, ocr.NewTemplateStore(ocrCfg.TemplateDir), s.sink)
	}
	return s
}

/*
EnsureInitialized loads the persisted cache the first time it is called.

A missing or unreadable cache file is not an error: the Solver starts empty and
the next flush replaces the file.
*/
func (s *Solver) EnsureInitialized() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return
	}
	s.initialized = true

	if s.cfg.CacheFile == "" {
		return
	}

	entries, e := loadCacheFile(s.cfg.CacheFile)
	if e != nil {
		tl.Log(tl.Warning, palette.Yellow, "Starting with an empty captcha cache: '%s'", e)
	}
	maps.Copy(s.cache, entries)
}

// Solve returns the text of an encoded captcha, or ok == false when it cannot
// be read.
func (s *Solver) Solve(encoded string) (text string, ok bool) {
	text, err := s.SolveDetailed(encoded)
	return text, err == nil
}

/*
SolveDetailed is Solve with the reason for a miss.

The error wraps ErrDecodeFailure, ocr.ErrFormatMismatch or
ocr.ErrValidationFailure. Failures are not cached.
*/
func (s *Solver) SolveDetailed(encoded string) (text string, err error) {
	s.EnsureInitialized()

	payload := StripDataURI(encoded)
	fingerprint := Fingerprint(payload)

	if text, ok := s.lookup(fingerprint, true); ok {
		tl.Log(tl.Info1, palette.Cyan, "Cache hit for '%s': '%s'", fingerprint, text)
		return text, nil
	}

	value, err, _ := s.flight.Do(fingerprint, func() (any, error) {
		return s.solveMiss(fingerprint, payload)
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

func (s *Solver) solveMiss(fingerprint, payload string) (text string, err error) {
	// a concurrent flight may have finished between lookup and Do
	if text, ok := s.lookup(fingerprint, false); ok {
		return text, nil
	}

	img, err := decodePayload(payload)
	if err != nil {
		s.recordFailure(err)
		tl.Log(tl.Verbose, palette.PurpleDim, "Unable to decode captcha '%s': '%s'", fingerprint, err)
		return "", err
	}

	result, err := s.reader.Run(img)
	if err != nil {
		s.recordFailure(err)
		return "", err
	}
	if !ocr.ValidText(result.Text) {
		err = fmt.Errorf("%w: %q", ocr.ErrValidationFailure, result.Text)
		s.recordFailure(err)
		return "", err
	}

	s.insert(fingerprint, result.Text)
	s.sink.Sample(result.Text, result.Processed)

	return result.Text, nil
}

func (s *Solver) lookup(fingerprint string, count bool) (text string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, ok = s.cache[fingerprint]
	if count {
		if ok {
			s.stats.Hits++
		} else {
			s.stats.Misses++
		}
	}
	return text, ok
}

func (s *Solver) insert(fingerprint, text string) {
	s.mu.Lock()
	_, existed := s.cache[fingerprint]
	s.cache[fingerprint] = text
	size := len(s.cache)
	s.stats.Solved++
	s.mu.Unlock()

	if !existed && s.cfg.FlushEvery > 0 && size%s.cfg.FlushEvery == 0 {
		s.Flush()
	}
}

func (s *Solver) recordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case errors.Is(err, ErrDecodeFailure):
		s.stats.DecodeFailures++
	case errors.Is(err, ocr.ErrFormatMismatch):
		s.stats.FormatMismatches++
	case errors.Is(err, ocr.ErrValidationFailure):
		s.stats.ValidationFailures++
	}
}

/*
Flush writes the whole cache to Config.CacheFile now.

Snapshots are taken and written in order, so a later flush never leaves an
older mapping on disk. Write failures are logged and otherwise ignored.
*/
func (s *Solver) Flush() {
	if s.cfg.CacheFile == "" {
		return
	}

	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	snapshot := maps.Clone(s.cache)
	s.mu.Unlock()

	e := writeCacheFile(s.cfg.CacheFile, snapshot)
	if e != nil {
		tl.Log(tl.Warning, palette.Yellow, "Unable to persist captcha cache: '%s'", e)
	}
}

// Stats returns a copy of the counters.
func (s *Solver) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.stats
	stats.CacheSize = len(s.cache)
	return stats
}
