package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/exaile/exaile-test-files/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files, optionally with #EXTINF lines.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (INI-style, Winamp/SHOUTcast).
	FormatPLS
)

// ParsePlaylistFormat maps a settings value ("m3u", "pls") to a format.
func ParsePlaylistFormat(s string) (PlaylistFormat, error) {
	switch strings.ToLower(s) {
	case "", "m3u":
		return FormatM3U, nil
	case "pls":
		return FormatPLS, nil
	default:
		return FormatM3U, fmt.Errorf("unknown playlist format %q", s)
	}
}

// Extension returns the file extension for the format, including the dot.
func (pf PlaylistFormat) Extension() string {
	if pf == FormatPLS {
		return ".pls"
	}
	return ".m3u"
}

// PlaylistCreator renders one playlist per generated album.
//
// Entries are file names relative to the album directory, in track order.
// Generated files have no known duration, so lengths are written as -1.
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // M3U only: include #EXTM3U / #EXTINF lines
}

// NewPlaylistCreator creates a new PlaylistCreator.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Format returns the format the creator renders.
func (p *PlaylistCreator) Format() PlaylistFormat {
	return p.format
}

// CreatePlaylist generates playlist content for an album.
func (p *PlaylistCreator) CreatePlaylist(album *model.Album) string {
	if p.format == FormatPLS {
		return p.createPLS(album)
	}
	return p.createM3U(album)
}

// createM3U generates an M3U playlist:
//
//	#EXTM3U
//	#EXTINF:-1,Artist - Title
//	1 - Title.mp3
func (p *PlaylistCreator) createM3U(album *model.Album) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, track := range album.Tracks {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:-1,%s - %s\n", album.Artist.Name, track.Title)
		}
		sb.WriteString(filepath.Base(track.Path) + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist:
//
//	[playlist]
//	File1=1 - Title.mp3
//	Title1=Title
//	Length1=-1
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(album *model.Album) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")
	for i, track := range album.Tracks {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, filepath.Base(track.Path))
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, track.Title)
		fmt.Fprintf(&sb, "Length%d=-1\n", idx)
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(album.Tracks))
	sb.WriteString("Version=2\n")

	return sb.String()
}
