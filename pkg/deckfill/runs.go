package deckfill

import (
	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
)

// mergeStats counts what a merge pass did
type mergeStats struct {
	merged   int
	replaced int
}

func (m *mergeStats) add(o mergeStats) {
	m.merged += o.merged
	m.replaced += o.replaced
}

// mergeRuns substitutes tokens in a paragraph, merging runs that share a
// formatting fingerprint so that tokens split across runs are found.
// Paragraphs implementing deck.Segmented are merged segment by segment, so
// runs never move across a line break or field.
func mergeRuns(p deck.Paragraph, sub *substituter) mergeStats {
	segments := [][]deck.Run{p.Runs()}
	if sp, ok := p.(deck.Segmented); ok {
		segments = sp.Segments()
	}
	var stats mergeStats
	for _, runs := range segments {
		stats.add(mergeChain(p, runs, sub))
	}
	return stats
}

// mergeChain merges adjacent runs of one segment.
//
// When run and its predecessor match, the predecessor is removed and run
// receives the substituted text of the whole chain. The chain's raw text is
// carried along so substituted values are never substituted again.
func mergeChain(p deck.Paragraph, runs []deck.Run, sub *substituter) mergeStats {
	var stats mergeStats
	var last deck.Run
	var lastPrint deck.Fingerprint
	var raw string
	var chain int

	for _, run := range runs {
		fp := run.Font().Fingerprint()
		if last != nil && fp == lastPrint {
			raw += run.Text()
			text, n := sub.Replace(raw)
			run.SetText(text)
			if err := p.RemoveRun(last); err == nil {
				stats.merged++
			}
			stats.replaced += n - chain
			chain = n
		} else {
			raw = run.Text()
			text, n := sub.Replace(raw)
			if n > 0 {
				run.SetText(text)
			}
			stats.replaced += n
			chain = n
		}
		last = run
		lastPrint = fp
	}
	return stats
}
