// SPDX-License-Identifier: MPL-2.0

// Package discovery finds blueprint document files under scan roots.
//
// Roots may be files or directories. Directories are walked recursively and
// every file whose root-relative slash path matches one of the doublestar
// patterns, and no ignore pattern, is returned. Unreadable paths do not abort
// the walk; they are reported as Diagnostics.
package discovery
