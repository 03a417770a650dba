// Package store persists imported game collections, studies and engine
// evaluations in a badger key-value store. Values are JSON compressed with
// zstd.
//
// Key layout:
//   - g/<collection>\x00<game key>  one game
//   - s/<study name>                one study with all chapters
//   - e/<position key>              one evaluation
package store
