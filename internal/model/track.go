package model

import (
	"fmt"
	"path/filepath"

	ioutils "github.com/exaile/exaile-test-files/internal/io"
)

// Track is one generated output item.
type Track struct {
	// Album is the parent album.
	Album *Album

	// Number is the 1-based position of the track inside its album.
	Number int

	// Title is the raw random title, written to the title tag.
	Title string

	// Path is the full path of the generated file.
	Path string
}

// NewTrack creates a Track named "<number> - <title><ext>".
//
// The whole file name is sanitized against allowed before it is joined to
// the album directory. Numbers are unique inside an album, so file names
// never collide while the allow-list keeps digits. Empty, "." and ".."
// results get a "_" prefix, as directory names do.
func NewTrack(album *Album, number int, title, ext, allowed string) *Track {
	fileName := ioutils.SanitizeFileName(fmt.Sprintf("%d - %s%s", number, title, ext), allowed)
	if fileName == "" || fileName == "." || fileName == ".." {
		fileName = "_" + fileName
	}
	return &Track{
		Album:  album,
		Number: number,
		Title:  title,
		Path:   filepath.Join(album.Path, fileName),
	}
}

// Tags returns the tag set for the track: raw, unsanitized names.
func (t *Track) Tags() map[string]string {
	return map[string]string{
		"artist": t.Album.Artist.Name,
		"album":  t.Album.Title,
		"title":  t.Title,
	}
}
