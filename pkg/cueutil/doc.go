// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE files against an embedded schema.
//
// Catalog files and the config file share the same flow:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify it with the schema definition
//  3. Validate and decode to a Go struct
//
// # Usage
//
//	//go:embed catalog_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[catalogFile](
//	    schemaBytes,
//	    userFileBytes,
//	    "#Catalog",
//	    cueutil.WithFilename("mods.cue"),
//	)
//	if err != nil {
//	    return nil, err // carries the CUE path of every failing value
//	}
package cueutil
