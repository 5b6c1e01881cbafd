// Package request buffers inbound HTTP requests into immutable snapshots
// that are safe to share across concurrent mirror attempts.
package request
