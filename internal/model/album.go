package model

import (
	"path/filepath"

	ioutils "github.com/exaile/exaile-test-files/internal/io"
)

// Artist is a generated artist: a random name and its directory.
type Artist struct {
	// Name is the raw random name, written to the artist tag.
	Name string

	// Path is the artist directory, a direct child of the output root.
	Path string
}

// NewArtist creates an Artist whose directory sits under root.
func NewArtist(name, root string, names *NameRegistry) *Artist {
	return &Artist{
		Name: name,
		Path: filepath.Join(root, names.DirName(root, name)),
	}
}

// Album is a generated album and the tracks written into it so far.
type Album struct {
	// Artist is the owning artist.
	Artist *Artist

	// Title is the raw random album name, written to the album tag.
	Title string

	// Path is the album directory inside the artist directory.
	Path string

	// Tracks holds the album's tracks in generation order.
	Tracks []*Track
}

// NewAlbum creates an Album nested in the artist's directory.
func NewAlbum(artist *Artist, title string, names *NameRegistry) *Album {
	return &Album{
		Artist: artist,
		Title:  title,
		Path:   filepath.Join(artist.Path, names.DirName(artist.Path, title)),
	}
}

// PlaylistPath returns the path of the album's playlist for the given
// extension (including the dot). The playlist is named after the album.
func (a *Album) PlaylistPath(allowed, ext string) string {
	name := ioutils.SanitizeFileName(a.Title, allowed)
	if name == "" {
		name = "playlist"
	}
	return filepath.Join(a.Path, name+ext)
}
