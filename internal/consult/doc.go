// Package consult implements the knowledge lookup tool backed by the
// consultant HTTP service.
package consult
