package domain

// Page represents one physical page of text extracted from a source
// document. Pages are immutable and consumed by the chunker; they do
// not outlive an ingestion run.
type Page struct {
	// Text is the raw page text as extracted.
	Text string

	// Source is the original document location (file path or URL).
	Source string

	// Number is the 0-based page index. Presentation layers add 1
	// for display.
	Number int
}

// Segment is a bounded, possibly overlapping slice of document text.
// It is the unit of embedding, indexing and retrieval.
type Segment struct {
	// ID is the unique identifier for the segment.
	ID string

	// Text is the segment content. Never empty, never longer than the
	// configured chunk size.
	Text string

	// Source is inherited from the originating page.
	Source string

	// Page is the 0-based page index of the segment's first character.
	// A segment spanning a page boundary is attributed to the page it
	// starts on.
	Page int

	// Position is the ordinal position of the segment within the
	// document.
	Position int
}

// Length returns the segment text length in bytes.
func (s Segment) Length() int {
	return len(s.Text)
}

// RetrievedSegment is a segment returned by similarity search together
// with its relevance score. Results are ordered most similar first.
type RetrievedSegment struct {
	// Segment is the matched segment.
	Segment Segment

	// Score is the cosine similarity between the query vector and the
	// segment vector. Higher is more similar.
	Score float64
}

// IndexStats summarises the contents of a built index.
type IndexStats struct {
	// Segments is the number of indexed segments.
	Segments int

	// Pages is the number of source pages the segments were derived
	// from. Zero when unknown (e.g. reported by an opened index rather
	// than a build).
	Pages int

	// Model is the embedding model identifier the index was built with.
	Model string
}

// Answer is the result of a full question-answering round trip: the
// synthesizer's free-form answer text plus the reconciled citations
// for the segments that grounded it.
type Answer struct {
	// Text is the synthesizer's answer, passed through unaltered.
	Text string

	// Citations point back to the retrieved sources, deduplicated,
	// first-seen order.
	Citations []Citation

	// Segments are the retrieved segments that built the context, in
	// retrieval rank order.
	Segments []RetrievedSegment
}
