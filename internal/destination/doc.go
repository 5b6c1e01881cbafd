// Package destination models the configured upstream base addresses and
// constructs the per-destination outbound requests mirrored from one
// inbound request snapshot.
package destination
