package deckfill

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
)

// filler holds the state of one fill call. Everything but the per-slide
// results is read-only once the walk starts.
type filler struct {
	codec   Codec
	ctx     Context
	sub     *substituter
	loader  ImageLoader
	strict  bool
	workers int
	logger  *zap.Logger
}

func newFiller(e *Engine, data Context, logger *zap.Logger) *filler {
	return &filler{
		codec:   e.codec,
		ctx:     data,
		sub:     newSubstituter(e.codec, data),
		loader:  e.loader,
		strict:  e.opts.StrictMode,
		workers: e.opts.Workers,
		logger:  logger,
	}
}

// slideResult is what one slide contributed to the report
type slideResult struct {
	textShapes     int
	runsMerged     int
	tokensReplaced int
	tables         int
	tablesExpanded int
	rowsGenerated  int
	pictures       []PictureOutcome
	warnings       []*FillError
}

func (r *slideResult) addStats(s mergeStats) {
	r.runsMerged += s.merged
	r.tokensReplaced += s.replaced
}

// walk fills every slide of d. With more than one worker slides are processed
// concurrently; a slide is always handled by a single goroutine.
func (f *filler) walk(ctx context.Context, d deck.Deck, report *Report) error {
	slides := d.Slides()
	results := make([]slideResult, len(slides))

	var err error
	if f.workers <= 1 || len(slides) < 2 {
		for i, s := range slides {
			if err = ctx.Err(); err != nil {
				break
			}
			if err = f.fillSlide(ctx, s, &results[i]); err != nil {
				break
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(f.workers)
		for i, s := range slides {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return f.fillSlide(gctx, s, &results[i])
			})
		}
		err = g.Wait()
	}

	report.Slides = len(slides)
	for i := range results {
		report.merge(&results[i])
	}
	return err
}

func (f *filler) fillSlide(ctx context.Context, s deck.Slide, res *slideResult) error {
	slideNo := s.Index() + 1
	f.logger.Debug("filling slide", zap.Int("slide", slideNo))
	return f.fillTree(ctx, s, slideNo, res)
}

// fillTree visits the shapes of a slide or group. The shape list is taken
// before the visit, so pictures inserted on the way are not revisited.
func (f *filler) fillTree(ctx context.Context, tree deck.ShapeTree, slideNo int, res *slideResult) error {
	for _, shape := range tree.Shapes() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f.fillShape(ctx, tree, shape, slideNo, res); err != nil {
			return err
		}
	}
	return nil
}

func (f *filler) fillShape(ctx context.Context, tree deck.ShapeTree, shape deck.Shape, slideNo int, res *slideResult) error {
	switch shape.Kind() {
	case deck.KindText:
		ts, ok := shape.(deck.TextShape)
		if !ok {
			return nil
		}
		stats, touched := substituteText(ts.TextFrame(), f.sub)
		if touched {
			res.textShapes++
			res.addStats(stats)
		}

	case deck.KindTable:
		ts, ok := shape.(deck.TableShape)
		if !ok {
			return nil
		}
		res.tables++
		tr, err := f.processTable(ts.Table())
		res.addStats(tr.stats)
		if err != nil {
			return f.fail(err, slideNo, shape, res)
		}
		if tr.expanded {
			res.tablesExpanded++
			res.rowsGenerated += tr.records
			f.logger.Debug("expanded relationship table",
				zap.Int("slide", slideNo),
				zap.String("shape", shape.Name()),
				zap.String("relationship", tr.relationship),
				zap.Int("records", tr.records))
		}

	case deck.KindPicture:
		pic, ok := shape.(deck.PictureShape)
		if !ok {
			return nil
		}
		outcome, err := f.resolvePicture(ctx, tree, pic)
		if err != nil {
			return f.fail(err, slideNo, shape, res)
		}
		res.pictures = append(res.pictures, outcome)
		f.logger.Debug("replaced picture",
			zap.Int("slide", slideNo),
			zap.String("shape", shape.Name()),
			zap.String("id", outcome.ID),
			zap.Stringer("geometry", outcome.Geometry))

	case deck.KindGroup:
		group, ok := shape.(deck.GroupShape)
		if !ok {
			return nil
		}
		return f.fillTree(ctx, group, slideNo, res)
	}
	return nil
}

// fail applies the strict-mode policy to a failure. Escalating kinds abort the
// walk in strict mode; everything else is logged and kept as a warning.
func (f *filler) fail(err error, slideNo int, shape deck.Shape, res *slideResult) error {
	var fe *FillError
	if !errors.As(err, &fe) {
		return err
	}
	fe.at(slideNo, shape.Name())
	if f.strict && fe.Kind.Escalates() {
		return fe
	}
	f.logger.Warn("placeholder not resolved",
		zap.Int("slide", fe.Slide),
		zap.String("shape", fe.Shape),
		zap.String("key", fe.Key),
		zap.Stringer("kind", fe.Kind),
		zap.Error(fe.Err))
	res.warnings = append(res.warnings, fe)
	return nil
}
