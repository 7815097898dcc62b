package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ioutils "github.com/exaile/exaile-test-files/internal/io"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSettings is wrapped by every validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds all configuration options.
type Settings struct {
	// Generation
	Count        int    `json:"count" yaml:"count"`
	Seed         *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	OutputPath   string `json:"output_path" yaml:"output_path"`
	TemplatePath string `json:"template_path" yaml:"template_path"`

	// Grouping bounds
	AlbumsPerArtistMin int `json:"albums_per_artist_min" yaml:"albums_per_artist_min"`
	AlbumsPerArtistMax int `json:"albums_per_artist_max" yaml:"albums_per_artist_max"`
	SongsPerAlbumMin   int `json:"songs_per_album_min" yaml:"songs_per_album_min"`
	SongsPerAlbumMax   int `json:"songs_per_album_max" yaml:"songs_per_album_max"`

	// Name lengths
	ArtistNameMin int `json:"artist_name_min" yaml:"artist_name_min"`
	ArtistNameMax int `json:"artist_name_max" yaml:"artist_name_max"`
	AlbumNameMin  int `json:"album_name_min" yaml:"album_name_min"`
	AlbumNameMax  int `json:"album_name_max" yaml:"album_name_max"`
	TitleMin      int `json:"title_min" yaml:"title_min"`
	TitleMax      int `json:"title_max" yaml:"title_max"`

	// File naming
	AllowedFileNameChars string `json:"allowed_file_name_chars" yaml:"allowed_file_name_chars"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist" yaml:"create_playlist"`
	PlaylistFormat string `json:"playlist_format" yaml:"playlist_format"` // m3u, pls
	M3UExtended    bool   `json:"m3u_extended" yaml:"m3u_extended"`

	// Tag settings
	CoverArtPath        string `json:"cover_art_path" yaml:"cover_art_path"`
	CoverArtMaxSize     int    `json:"cover_art_max_size" yaml:"cover_art_max_size"`
	StripTemplateFrames bool   `json:"strip_template_frames" yaml:"strip_template_frames"`

	// Run manifest (SQLite); empty disables it
	ManifestPath string `json:"manifest_path" yaml:"manifest_path"`

	// Audit pass after generation
	Audit            bool `json:"audit" yaml:"audit"`
	AuditConcurrency int  `json:"audit_concurrency" yaml:"audit_concurrency"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		Count: 1000,

		AlbumsPerArtistMin: 1,
		AlbumsPerArtistMax: 10,
		SongsPerAlbumMin:   1,
		SongsPerAlbumMax:   24,

		ArtistNameMin: 3,
		ArtistNameMax: 16,
		AlbumNameMin:  3,
		AlbumNameMax:  16,
		TitleMin:      3,
		TitleMax:      16,

		AllowedFileNameChars: ioutils.DefaultAllowedChars,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		CoverArtMaxSize: 500,

		AuditConcurrency: 8,
	}
}

// Load reads settings from a JSON or YAML file, chosen by extension.
// A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON or YAML file, chosen by extension.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
