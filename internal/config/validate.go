package config

import (
	"fmt"
	"os"
	"strings"
)

// Validate checks everything a run needs before any file is written.
func (s *Settings) Validate() error {
	if s.Count < 0 {
		return invalid("count", "must not be negative, got %d", s.Count)
	}
	if s.OutputPath == "" {
		return invalid("output_path", "is required")
	}
	if err := CheckTemplate(s.TemplatePath); err != nil {
		return err
	}
	if err := s.ValidateRanges(); err != nil {
		return err
	}

	switch strings.ToLower(s.PlaylistFormat) {
	case "", "m3u", "pls":
	default:
		return invalid("playlist_format", "unknown format %q", s.PlaylistFormat)
	}

	if s.CoverArtPath != "" {
		if _, err := os.Stat(s.CoverArtPath); err != nil {
			return invalid("cover_art_path", "%v", err)
		}
	}
	if s.CoverArtMaxSize < 0 {
		return invalid("cover_art_max_size", "must not be negative, got %d", s.CoverArtMaxSize)
	}
	if s.Audit && s.AuditConcurrency < 1 {
		return invalid("audit_concurrency", "must be at least 1, got %d", s.AuditConcurrency)
	}

	return nil
}

// ValidateRanges checks the grouping bounds, name lengths and allow-list.
func (s *Settings) ValidateRanges() error {
	groups := []struct {
		field    string
		min, max int
	}{
		{"albums_per_artist", s.AlbumsPerArtistMin, s.AlbumsPerArtistMax},
		{"songs_per_album", s.SongsPerAlbumMin, s.SongsPerAlbumMax},
	}
	for _, g := range groups {
		if g.min < 1 || g.min > g.max {
			return invalid(g.field, "need 1 <= min <= max, got [%d, %d]", g.min, g.max)
		}
	}

	lengths := []struct {
		field    string
		min, max int
	}{
		{"artist_name", s.ArtistNameMin, s.ArtistNameMax},
		{"album_name", s.AlbumNameMin, s.AlbumNameMax},
		{"title", s.TitleMin, s.TitleMax},
	}
	for _, l := range lengths {
		if l.min < 0 || l.min > l.max {
			return invalid(l.field, "need 0 <= min <= max, got [%d, %d]", l.min, l.max)
		}
	}

	if s.AllowedFileNameChars == "" {
		return invalid("allowed_file_name_chars", "must not be empty")
	}
	if strings.ContainsAny(s.AllowedFileNameChars, "/\\\x00") {
		return invalid("allowed_file_name_chars", "must not contain path separators or NUL")
	}
	return nil
}

// CheckTemplate verifies the template is an existing, readable regular
// file.
func CheckTemplate(path string) error {
	if path == "" {
		return invalid("template_path", "is required")
	}

	f, err := os.Open(path)
	if err != nil {
		return invalid("template_path", "%v", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return invalid("template_path", "%v", err)
	}
	if !info.Mode().IsRegular() {
		return invalid("template_path", "%s is not a regular file", path)
	}
	return nil
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidSettings, field, fmt.Sprintf(format, args...))
}
