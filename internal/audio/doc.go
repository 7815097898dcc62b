// Package audio produces the physical output items of a generated
// collection: tagged copies of a template MP3 and optional per-album
// playlists.
//
// # Materializing Items
//
// Tagger copies the template and writes the artist, album and title tags:
//
//	tagger := audio.NewTagger(&audio.TagConfig{Artwork: jpegBytes})
//	err := tagger.Materialize(ctx, "click.mp3", dest, map[string]string{
//	    "artist": artist, "album": album, "title": title,
//	})
//
// Frames are rendered in a fixed order, so identical tags give identical
// files.
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true)
//	content := creator.CreatePlaylist(album)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
package audio
