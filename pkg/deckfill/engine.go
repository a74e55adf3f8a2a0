package deckfill

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/pptx"
)

// Options configures an Engine
type Options struct {
	// Delimiter bounds tokens in the deck; DefaultDelimiter when empty.
	Delimiter string
	// StrictMode turns unresolved relationships, table failures and unbound
	// pictures into errors instead of warnings.
	StrictMode bool
	// Workers is the number of slides filled concurrently; 0 or 1 fills sequentially.
	Workers int
	// Logger receives warnings and progress; a no-op logger when nil.
	Logger *zap.Logger
	// ImageLoader resolves picture bindings; DefaultImageLoader when nil.
	ImageLoader ImageLoader
	// Cache holds template bytes for FillFile; no caching when nil.
	Cache *TemplateCache
}

// Engine fills decks from contexts. An Engine is safe for concurrent use;
// each call works on its own deck.
type Engine struct {
	opts   Options
	codec  Codec
	logger *zap.Logger
	loader ImageLoader
	cache  *TemplateCache
}

// New creates an engine
func New(opts Options) (*Engine, error) {
	delim := opts.Delimiter
	if delim == "" {
		delim = DefaultDelimiter
	}
	codec, err := NewCodec(delim)
	if err != nil {
		return nil, err
	}
	if opts.Workers < 0 {
		return nil, fmt.Errorf("workers cannot be negative: %d", opts.Workers)
	}

	e := &Engine{
		opts:   opts,
		codec:  codec,
		logger: opts.Logger,
		loader: opts.ImageLoader,
		cache:  opts.Cache,
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.loader == nil {
		e.loader = DefaultImageLoader
	}
	return e, nil
}

// NewWithConfig creates an engine from a configuration
func NewWithConfig(cfg *Config, logger *zap.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	var cache *TemplateCache
	if cfg.CacheMaxSize > 0 {
		cache = NewTemplateCache(cfg.CacheMaxSize, cfg.CacheTTL)
	}
	return New(Options{
		Delimiter:  cfg.Delimiter,
		StrictMode: cfg.StrictMode,
		Workers:    cfg.Workers,
		Logger:     logger,
		Cache:      cache,
	})
}

// Codec returns the token codec of the engine
func (e *Engine) Codec() Codec { return e.codec }

// Report summarizes a fill
type Report struct {
	RunID          string
	Slides         int
	TextShapes     int
	RunsMerged     int
	TokensReplaced int
	Tables         int
	TablesExpanded int
	RowsGenerated  int
	Pictures       []PictureOutcome
	// Warnings are the failures that did not stop the fill, in slide order.
	Warnings []*FillError
	Duration time.Duration
}

func (r *Report) merge(s *slideResult) {
	r.TextShapes += s.textShapes
	r.RunsMerged += s.runsMerged
	r.TokensReplaced += s.tokensReplaced
	r.Tables += s.tables
	r.TablesExpanded += s.tablesExpanded
	r.RowsGenerated += s.rowsGenerated
	r.Pictures = append(r.Pictures, s.pictures...)
	r.Warnings = append(r.Warnings, s.warnings...)
}

// Err combines the warnings into one error, nil when there are none
func (r *Report) Err() error {
	if r == nil {
		return nil
	}
	errs := make([]error, len(r.Warnings))
	for i, w := range r.Warnings {
		errs[i] = w
	}
	return multierr.Combine(errs...)
}

// Fill substitutes data into every slide of d.
//
// In non-strict mode unresolved placeholders are collected in the report and
// the returned error is nil unless ctx is cancelled. In strict mode the first
// escalating failure stops the fill and is returned as a *FillError; the deck
// is then partially filled.
func (e *Engine) Fill(ctx context.Context, d deck.Deck, data Context) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString()}
	logger := e.logger.With(zap.String("run_id", report.RunID))

	for _, w := range e.ValidateContext(data) {
		logger.Warn("context warning", zap.Stringer("kind", w.Kind), zap.String("key", w.Key), zap.Error(w.Err))
		report.Warnings = append(report.Warnings, w)
	}
	if data == nil {
		data = Context{}
	}

	f := newFiller(e, data, logger)
	err := f.walk(ctx, d, report)
	report.Duration = time.Since(start)

	logger.Info("fill finished",
		zap.Int("slides", report.Slides),
		zap.Int("tokens_replaced", report.TokensReplaced),
		zap.Int("rows_generated", report.RowsGenerated),
		zap.Int("pictures", len(report.Pictures)),
		zap.Int("warnings", len(report.Warnings)),
		zap.Duration("duration", report.Duration),
		zap.Error(err))
	return report, err
}

// ValidateContext reports problems with a context that do not prevent a fill:
// an empty context, and keys that cannot be written as a token because they
// contain the delimiter.
func (e *Engine) ValidateContext(data Context) []*FillError {
	if len(data) == 0 {
		return []*FillError{newFailure(InvalidContext, "", ErrEmptyContext)}
	}
	var warnings []*FillError
	for _, k := range data.Keys() {
		if !e.codec.ValidKey(k) {
			warnings = append(warnings, newFailure(InvalidContext, k,
				fmt.Errorf("%w: key contains the delimiter %q", ErrInvalidContext, e.codec.Delimiter())))
		}
	}
	return warnings
}

// SubstituteText substitutes data into a text container and returns the number
// of tokens replaced. Containers mentioning no context key are left untouched.
func (e *Engine) SubstituteText(tc deck.TextContainer, data Context) int {
	stats, _ := substituteText(tc, newSubstituter(e.codec, data))
	return stats.replaced
}

// ProcessTable populates a table from data, expanding at most one relationship.
func (e *Engine) ProcessTable(t deck.Table, data Context) error {
	f := newFiller(e, data, e.logger)
	_, err := f.processTable(t)
	return err
}

// ResolvePicture replaces a picture placeholder in tree with the image its alt
// text is bound to in data.
func (e *Engine) ResolvePicture(ctx context.Context, tree deck.ShapeTree, pic deck.PictureShape, data Context) (PictureOutcome, error) {
	f := newFiller(e, data, e.logger)
	return f.resolvePicture(ctx, tree, pic)
}

// FillBytes fills a PPTX template held in memory and returns the filled file
func (e *Engine) FillBytes(ctx context.Context, template []byte, data Context) ([]byte, *Report, error) {
	pres, err := pptx.OpenBytes(template)
	if err != nil {
		return nil, nil, err
	}
	report, err := e.Fill(ctx, pres, data)
	if err != nil {
		return nil, report, err
	}
	var buf bytes.Buffer
	if err := pres.Save(&buf); err != nil {
		return nil, report, fmt.Errorf("failed to save presentation: %w", err)
	}
	return buf.Bytes(), report, nil
}

// FillFile fills the PPTX template at templatePath and writes the result to
// outputPath. The output location is checked before any work is done.
func (e *Engine) FillFile(ctx context.Context, templatePath, outputPath string, data Context) (*Report, error) {
	if err := checkWritable(outputPath); err != nil {
		return nil, err
	}
	template, err := e.readTemplate(templatePath)
	if err != nil {
		return nil, err
	}
	out, report, err := e.FillBytes(ctx, template, data)
	if err != nil {
		return report, err
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return report, fmt.Errorf("failed to write output: %w", err)
	}
	return report, nil
}

func (e *Engine) readTemplate(path string) ([]byte, error) {
	if e.cache != nil {
		if data, ok := e.cache.Get(path); ok {
			return data, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	if e.cache != nil {
		e.cache.Set(path, data)
	}
	return data, nil
}

// checkWritable fails when outputPath cannot be created
func checkWritable(outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path is empty")
	}
	dir := filepath.Dir(outputPath)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output directory %s is not a directory", dir)
	}
	if info, err := os.Stat(outputPath); err == nil && info.IsDir() {
		return fmt.Errorf("output path %s is a directory", outputPath)
	}
	f, err := os.CreateTemp(dir, ".deckfill-*")
	if err != nil {
		return fmt.Errorf("output directory is not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
