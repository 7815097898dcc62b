// Package random provides the seeded draw sequence used to build a
// synthetic collection.
//
// Everything in this package consumes a single Source in strict call
// order. Two Sources created from the same seed yield the same draws, so a
// run that makes the same calls in the same order reproduces the same
// names and group sizes.
//
// # Names
//
//	src := random.NewSource(42)
//	artist := src.String(3, 16) // one draw for the length, one per character
//
// # Grouping
//
// A Sequencer decides where group boundaries fall in a flat sequence:
//
//	albums := random.NewSequencer(src, 1, 24) // songs per album
//	for i := 0; i < count; i++ {
//	    if albums.Advance() {
//	        // first song of a new album
//	    }
//	    fmt.Println(albums.Position()) // 1-based index inside the album
//	}
//
// A Source is not safe for concurrent use.
package random
