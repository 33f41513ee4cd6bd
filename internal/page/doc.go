// Package page provides the page-manipulation tools offered to the remote
// assistant peer and the Surface they act on.
package page
