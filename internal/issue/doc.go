// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and Markdown help pages for the
// bpscan CLI.
//
// An ActionableError names the failed operation, the file or preset it
// concerned and a list of suggestions. An Issue is a longer Markdown page,
// rendered with glamour, that the CLI prints when a failure has a known
// remedy (a file that is not a blueprint document, an unknown preset, a
// broken catalog file...).
package issue
