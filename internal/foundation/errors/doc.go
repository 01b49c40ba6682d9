// Package errors provides classified error primitives shared by mdlinkcheck packages.
//
// A ClassifiedError carries a category, a severity and structured context. The
// CLI adapter maps categories to process exit codes.
//
// Example usage:
//
//	err := errors.WrapError(readErr, errors.CategoryFileSystem, "failed to read document").
//		WithContext("path", path).
//		Build()
package errors
