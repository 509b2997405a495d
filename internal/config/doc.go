// SPDX-License-Identifier: MPL-2.0

// Package config handles bpscan configuration using Viper with CUE as the
// file format.
//
// The file is config.cue in $XDG_CONFIG_HOME/bpscan (or the platform's user
// config directory), falling back to ./config.cue. It is validated against
// the embedded schema (config_schema.cue) before being merged over the
// defaults. Environment variables prefixed with BPSCAN_ override file values,
// for example BPSCAN_OUTPUT_FORMAT=json or BPSCAN_SCAN_WORKERS=4.
package config
