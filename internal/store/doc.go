// Package store provides the JSON file persistence for shopping lists and
// the product vocabulary.
//
// The store keeps no state of its own besides the file location: Load
// returns a fresh product.State and Save writes one back. The caller owns
// the in-memory state.
//
// # File shapes
//
// Current (shared list):
//
//	{ "shopping_list": ["milk", "bread"], "all_products": ["bread", "eggs", "milk"] }
//
// Per-user (also the legacy shape of older deployments):
//
//	{ "shopping_lists": { "<userId>": ["milk"] }, "all_products": ["milk"] }
//
// Which shape is written depends on the Mode given to Open. Load accepts
// both and migrates per-user files into one shared list in ModeShared.
//
// # Durability
//
//   - Save writes <file>.tmp, fsyncs it, then renames it over <file>
//   - The rename is the commit point; a cancelled context before it leaves
//     the previous file untouched
//   - Load never fails on bad content: an unreadable or malformed file is
//     logged and treated as empty
package store
