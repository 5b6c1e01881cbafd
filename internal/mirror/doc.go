// Package mirror implements the concurrent fan-out race at the core of
// the dev server: one inbound request snapshot is replicated to every
// configured destination, each attempt runs under its own timeout, and
// the first completed response wins while the rest are cancelled.
package mirror
