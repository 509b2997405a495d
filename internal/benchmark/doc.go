// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds benchmarks for the hot paths of bpscan, used for
// PGO profile generation:
//   - document decoding (plain, gzip and zstd inputs)
//   - reference collection and dependency resolution
//   - catalog file parsing
//   - batch scanning with and without the result cache
//
// To generate a profile, run:
//
//	go test ./internal/benchmark -run '^$' -bench . -cpuprofile default.pgo
package benchmark
