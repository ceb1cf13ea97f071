package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Citation is a human-readable pointer back to the source of a
// retrieved segment.
type Citation struct {
	// Display is the rendered citation string. Format is stable and
	// user-facing:
	//
	//	" {filename} (Page {n})"  for local files, n 1-based
	//	" {url}"                  verbatim for URL-bearing sources
	Display string
}

// Cite renders the citation for a segment. URL-bearing sources are
// rendered verbatim; file sources are reduced to their base name with
// a 1-based page number appended.
func (s Segment) Cite() Citation {
	if strings.Contains(s.Source, "http") {
		return Citation{Display: " " + s.Source}
	}
	display := " " + filepath.Base(s.Source)
	if s.Page >= 0 {
		display += fmt.Sprintf(" (Page %d)", s.Page+1)
	}
	return Citation{Display: display}
}

// ReconcileCitations collapses the sources of retrieved segments into
// a deduplicated citation list. Two segments from the same file and
// page produce one citation regardless of differing text; first-seen
// order is preserved.
func ReconcileCitations(results []RetrievedSegment) []Citation {
	seen := make(map[string]struct{}, len(results))
	citations := make([]Citation, 0, len(results))
	for _, r := range results {
		c := r.Segment.Cite()
		if _, ok := seen[c.Display]; ok {
			continue
		}
		seen[c.Display] = struct{}{}
		citations = append(citations, c)
	}
	return citations
}
