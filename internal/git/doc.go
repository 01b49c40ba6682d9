// Package git inspects the git working tree that contains the checked
// documents.
//
// It reports which files changed relative to HEAD so a check can be limited
// to documents touched in the current change, and exposes the HEAD commit
// for stamping reports.
package git
