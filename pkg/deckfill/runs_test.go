package deckfill

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck/memdeck"
)

var (
	plain = deck.Font{}
	bold  = deck.Font{Bold: deck.On}
)

type runSnapshot struct {
	Text string
	Font deck.Font
}

func snapshotRuns(p *memdeck.Paragraph) []runSnapshot {
	var out []runSnapshot
	for _, r := range p.RunList() {
		out = append(out, runSnapshot{Text: r.Text(), Font: r.Font()})
	}
	return out
}

func TestMergeRunsIdenticalFormatting(t *testing.T) {
	p := memdeck.NewParagraph(memdeck.NewRun("A", bold), memdeck.NewRun("B", bold))
	sub := newSubstituter(MustCodec("$"), Context{"x": "y"})

	stats := mergeRuns(p, sub)

	assert.Equal(t, 1, stats.merged)
	require.Len(t, p.RunList(), 1)
	assert.Equal(t, "AB", p.RunList()[0].Text())
	assert.Equal(t, bold, p.RunList()[0].Font())
}

func TestMergeRunsCountDecreasesPerMerge(t *testing.T) {
	p := memdeck.NewParagraph(
		memdeck.NewRun("a", plain),
		memdeck.NewRun("b", plain),
		memdeck.NewRun("c", plain),
		memdeck.NewRun("d", bold),
	)
	stats := mergeRuns(p, newSubstituter(MustCodec("$"), Context{"k": "v"}))

	assert.Equal(t, 2, stats.merged)
	want := []runSnapshot{{"abc", plain}, {"d", bold}}
	if diff := cmp.Diff(want, snapshotRuns(p)); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeRunsTokenSplitAcrossRuns(t *testing.T) {
	p := memdeck.NewParagraph(
		memdeck.NewRun("Hello $na", plain),
		memdeck.NewRun("me$!", plain),
	)
	stats := mergeRuns(p, newSubstituter(MustCodec("$"), Context{"name": "Ann"}))

	assert.Equal(t, 1, stats.replaced)
	assert.Equal(t, "Hello Ann!", p.Text())
	assert.Len(t, p.RunList(), 1)
}

func TestMergeRunsDifferentFormattingDoesNotMerge(t *testing.T) {
	p := memdeck.NewParagraph(
		memdeck.NewRun("$name$", bold),
		memdeck.NewRun(" is here", plain),
	)
	stats := mergeRuns(p, newSubstituter(MustCodec("$"), Context{"name": "Ann"}))

	assert.Equal(t, 0, stats.merged)
	assert.Equal(t, 1, stats.replaced)
	want := []runSnapshot{{"Ann", bold}, {" is here", plain}}
	if diff := cmp.Diff(want, snapshotRuns(p)); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeRunsColorIsNotPartOfFingerprint(t *testing.T) {
	red := deck.Font{Color: deck.Color{RGB: "FF0000"}}
	p := memdeck.NewParagraph(memdeck.NewRun("$a", plain), memdeck.NewRun("$", red))
	mergeRuns(p, newSubstituter(MustCodec("$"), Context{"a": "1"}))

	require.Len(t, p.RunList(), 1)
	assert.Equal(t, "1", p.RunList()[0].Text())
}

func TestMergeRunsDoesNotCountChainTwice(t *testing.T) {
	p := memdeck.NewParagraph(
		memdeck.NewRun("$a$", plain),
		memdeck.NewRun(" and ", plain),
		memdeck.NewRun("$b$", plain),
	)
	stats := mergeRuns(p, newSubstituter(MustCodec("$"), Context{"a": "1", "b": "2"}))

	assert.Equal(t, 2, stats.replaced)
	assert.Equal(t, "1 and 2", p.Text())
}

func TestMergeRunsValueNotSubstitutedAgain(t *testing.T) {
	p := memdeck.NewParagraph(
		memdeck.NewRun("$a$", plain),
		memdeck.NewRun("$b$", plain),
	)
	mergeRuns(p, newSubstituter(MustCodec("$"), Context{"a": "$b", "b": "x"}))

	assert.Equal(t, "$bx", p.Text())
}

func TestSubstituteTextLeavesNonMatchingContainerUntouched(t *testing.T) {
	runs := []*memdeck.Run{
		memdeck.NewRun("Quarterly ", plain),
		memdeck.NewRun("report", plain),
		memdeck.NewRun(" $unknown$", bold),
	}
	p := memdeck.NewParagraph(runs...)
	frame := memdeck.NewTextFrame(p)
	before := snapshotRuns(p)

	stats, touched := substituteText(frame, newSubstituter(MustCodec("$"), Context{"name": "Ann"}))

	assert.False(t, touched)
	assert.Equal(t, mergeStats{}, stats)
	if diff := cmp.Diff(before, snapshotRuns(p)); diff != "" {
		t.Errorf("runs changed (-before +after):\n%s", diff)
	}
	for i, r := range p.RunList() {
		assert.Same(t, runs[i], r)
	}
}

func TestSubstituteTextEveryParagraph(t *testing.T) {
	frame := memdeck.NewTextFrame(
		memdeck.TextParagraph("Dear $name$,"),
		memdeck.TextParagraph("Total: $total$"),
	)
	stats, touched := substituteText(frame, newSubstituter(MustCodec("$"), Context{"name": "Ann", "total": 12}))

	assert.True(t, touched)
	assert.Equal(t, 2, stats.replaced)
	assert.Equal(t, "Dear Ann,\nTotal: 12", frame.Text())
}

func TestSubstituteTextNilContainer(t *testing.T) {
	_, touched := substituteText(nil, newSubstituter(MustCodec("$"), Context{"a": 1}))
	assert.False(t, touched)
}

// splitParagraph reports a segment boundary before the run at index split
type splitParagraph struct {
	*memdeck.Paragraph
	split int
}

func (p splitParagraph) Segments() [][]deck.Run {
	runs := p.Runs()
	return [][]deck.Run{runs[:p.split], runs[p.split:]}
}

func TestMergeRunsStopsAtSegmentBoundary(t *testing.T) {
	p := memdeck.NewParagraph(
		memdeck.NewRun("Hi $name$", plain),
		memdeck.NewRun("bye", plain),
		memdeck.NewRun(" now", plain),
	)
	stats := mergeRuns(splitParagraph{Paragraph: p, split: 1}, newSubstituter(MustCodec("$"), Context{"name": "Ann"}))

	assert.Equal(t, 1, stats.merged)
	assert.Equal(t, 1, stats.replaced)
	want := []runSnapshot{{"Hi Ann", plain}, {"bye now", plain}}
	if diff := cmp.Diff(want, snapshotRuns(p)); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}
}
