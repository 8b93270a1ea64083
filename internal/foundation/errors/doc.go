// Package errors provides the classified error primitives used across sitebuilder.
//
// A ClassifiedError carries a category (what kind of input or step failed), a
// severity (whether the build can continue) and structured context that is
// surfaced in logs. The fluent ErrorBuilder keeps construction uniform:
//
//	err := errors.WrapError(parseErr, errors.CategoryContent, "malformed front matter").
//		WithContext("path", path).
//		Build()
//
// The CLI adapter maps categories to process exit codes.
package errors
