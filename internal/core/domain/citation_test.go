package domain

import (
	"path/filepath"
	"testing"
)

func TestSegment_Cite_File(t *testing.T) {
	s := Segment{Source: filepath.Join("docs", "report.pdf"), Page: 4}
	got := s.Cite().Display
	want := " report.pdf (Page 5)"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSegment_Cite_FirstPage(t *testing.T) {
	s := Segment{Source: "annual.pdf", Page: 0}
	got := s.Cite().Display
	if got != " annual.pdf (Page 1)" {
		t.Errorf("page display should be 1-based, got %q", got)
	}
}

func TestSegment_Cite_URL(t *testing.T) {
	s := Segment{Source: "https://example.com/filing.pdf", Page: 2}
	got := s.Cite().Display
	// URL sources render verbatim, no page suffix.
	if got != " https://example.com/filing.pdf" {
		t.Errorf("expected verbatim URL citation, got %q", got)
	}
}

func TestReconcileCitations_Dedup(t *testing.T) {
	results := []RetrievedSegment{
		{Segment: Segment{Source: "report.pdf", Page: 4, Text: "alpha"}},
		{Segment: Segment{Source: "other.pdf", Page: 0, Text: "beta"}},
		{Segment: Segment{Source: "report.pdf", Page: 4, Text: "gamma"}},
	}

	citations := ReconcileCitations(results)
	if len(citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(citations))
	}
	// First-seen order preserved.
	if citations[0].Display != " report.pdf (Page 5)" {
		t.Errorf("unexpected first citation: %q", citations[0].Display)
	}
	if citations[1].Display != " other.pdf (Page 1)" {
		t.Errorf("unexpected second citation: %q", citations[1].Display)
	}
}

func TestReconcileCitations_Empty(t *testing.T) {
	if got := ReconcileCitations(nil); len(got) != 0 {
		t.Errorf("expected no citations, got %d", len(got))
	}
}
