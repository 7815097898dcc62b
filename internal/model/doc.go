// Package model defines the core data structures of a generated
// collection.
//
// # Artist, Album and Track
//
// Each entity carries its raw random name, used for tags, and a
// filesystem path derived from a sanitized form of that name:
//
//	names := model.NewNameRegistry(ioutils.DefaultAllowedChars)
//	artist := model.NewArtist("AC/DC?", "/out", names)
//	album := model.NewAlbum(artist, "Live!", names)
//	track := model.NewTrack(album, 1, "T.N.T", ".mp3", names.Allowed())
//	fmt.Println(track.Path) // /out/ACDC/Live/1 - T.N.T.mp3
//
// # Name Registry
//
// Random names can sanitize to the same string, or to nothing at all.
// A NameRegistry hands out one directory name per entity and parent so
// two artists never share a directory and every album directory holds
// exactly one album.
package model
