// Package domain defines the core business entities for Insight.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Page: One page of text extracted from a source document
//   - Segment: A bounded, possibly overlapping slice of document text,
//     the unit of embedding and retrieval
//   - RetrievedSegment: A segment returned by similarity search
//   - Citation: A human-readable pointer back to a segment's source
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
