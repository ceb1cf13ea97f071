// Package driving provides interfaces for application entry points
// (primary/inbound ports). The CLI and TUI drive the core exclusively
// through these interfaces.
package driving
