// Package handler implements the main HTTP request handler for the dev
// server. It assigns the per-request correlation identifier, coordinates
// the snapshot/race pipeline, and guarantees that every inbound request
// gets exactly one well-formed response.
package handler
