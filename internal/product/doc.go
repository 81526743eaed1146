// Package product provides the value types shared by the store and the list
// engine: normalized product names, list scopes, shopping lists and the
// product vocabulary.
//
// This package imports nothing internal. Store, engine and bot all build on
// it, so it stays free of I/O and logging.
//
// Key constraints:
//   - A Name is always normalized (see Normalize); compare names with ==
//   - A List never holds the same Name twice
//   - The Vocabulary only grows; clearing a list never removes from it
package product
