// SPDX-License-Identifier: MPL-2.0

// Package blueprint models the JSON form of Factorio blueprint strings:
// blueprints, blueprint books, upgrade planners and deconstruction planners.
//
// Documents decode strictly. Unknown members are rejected with
// jsonstrict.ErrUnknownField and every decode error carries the path of the
// failing node, for example:
//
//	blueprint_book.3.blueprint: unknown field "entitys"
//
// Entities and their control behaviors are the exception. Their unmodelled
// settings are kept verbatim and written back on Marshal, so a document
// survives a round trip even when it uses entity kinds this package does
// not know in detail.
//
// Every node implements refs.Collector. Document.References walks the whole
// tree, including nested books.
package blueprint
