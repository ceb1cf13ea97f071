// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): page extraction, embedding, the vector
// index, the answer synthesizer and prompt storage.
package driven
