package deckfill

import (
	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
)

// substituteText runs the merger over every paragraph of a container, but only
// when the container's text mentions at least one context key. Containers
// without a match keep their runs exactly as they were.
func substituteText(tc deck.TextContainer, sub *substituter) (mergeStats, bool) {
	if tc == nil || !sub.ContainsAnyKey(tc.Text()) {
		return mergeStats{}, false
	}
	return substituteParagraphs(tc, sub), true
}

// substituteParagraphs runs the merger over every paragraph without the key pre-check
func substituteParagraphs(tc deck.TextContainer, sub *substituter) mergeStats {
	var stats mergeStats
	for _, p := range tc.Paragraphs() {
		stats.add(mergeRuns(p, sub))
	}
	return stats
}
