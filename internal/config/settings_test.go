package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func validSettings(t *testing.T) *Settings {
	t.Helper()
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "click.mp3")
	if err := os.WriteFile(tmpl, []byte("audio"), 0644); err != nil {
		t.Fatal(err)
	}

	s := DefaultSettings()
	s.OutputPath = filepath.Join(dir, "out")
	s.TemplatePath = tmpl
	return s
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.Count != 1000 || s.Seed != nil {
		t.Errorf("count/seed defaults = %d / %v", s.Count, s.Seed)
	}
	if s.AlbumsPerArtistMin != 1 || s.AlbumsPerArtistMax != 10 {
		t.Errorf("albums per artist = [%d, %d]", s.AlbumsPerArtistMin, s.AlbumsPerArtistMax)
	}
	if s.SongsPerAlbumMin != 1 || s.SongsPerAlbumMax != 24 {
		t.Errorf("songs per album = [%d, %d]", s.SongsPerAlbumMin, s.SongsPerAlbumMax)
	}
	if s.TitleMin != 3 || s.TitleMax != 16 {
		t.Errorf("title length = [%d, %d]", s.TitleMin, s.TitleMax)
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Count != DefaultSettings().Count {
		t.Errorf("Count = %d", s.Count)
	}
}

func TestSaveLoad(t *testing.T) {
	for _, name := range []string{"settings.json", "settings.yaml", "settings.yml"} {
		t.Run(name, func(t *testing.T) {
			seed := int64(42)
			s := DefaultSettings()
			s.Count = 5
			s.Seed = &seed
			s.OutputPath = "/tmp/out"
			s.CreatePlaylist = true

			path := filepath.Join(t.TempDir(), "nested", name)
			if err := s.Save(path); err != nil {
				t.Fatalf("Save: %v", err)
			}

			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Count != 5 || got.Seed == nil || *got.Seed != 42 || got.OutputPath != "/tmp/out" || !got.CreatePlaylist {
				t.Errorf("loaded %+v", got)
			}
		})
	}
}

func TestLoad_PartialYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("count: 7\nsongs_per_album_max: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Count != 7 || s.SongsPerAlbumMax != 3 || s.AlbumsPerArtistMax != 10 {
		t.Errorf("got count=%d songsMax=%d albumsMax=%d", s.Count, s.SongsPerAlbumMax, s.AlbumsPerArtistMax)
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(s *Settings)
		wantErr bool
	}{
		{"valid", func(s *Settings) {}, false},
		{"zero count", func(s *Settings) { s.Count = 0 }, false},
		{"negative count", func(s *Settings) { s.Count = -1 }, true},
		{"no output", func(s *Settings) { s.OutputPath = "" }, true},
		{"no template", func(s *Settings) { s.TemplatePath = "" }, true},
		{"missing template", func(s *Settings) { s.TemplatePath += ".missing" }, true},
		{"template is a directory", func(s *Settings) { s.TemplatePath = filepath.Dir(s.TemplatePath) }, true},
		{"zero songs per album", func(s *Settings) { s.SongsPerAlbumMin = 0 }, true},
		{"inverted albums per artist", func(s *Settings) { s.AlbumsPerArtistMin = 5; s.AlbumsPerArtistMax = 2 }, true},
		{"fixed group size", func(s *Settings) { s.SongsPerAlbumMin = 4; s.SongsPerAlbumMax = 4 }, false},
		{"empty names allowed", func(s *Settings) { s.TitleMin = 0; s.TitleMax = 0 }, false},
		{"negative name length", func(s *Settings) { s.ArtistNameMin = -1 }, true},
		{"empty allow-list", func(s *Settings) { s.AllowedFileNameChars = "" }, true},
		{"slash in allow-list", func(s *Settings) { s.AllowedFileNameChars = "./" }, true},
		{"backslash in allow-list", func(s *Settings) { s.AllowedFileNameChars = `ab\` }, true},
		{"narrow allow-list", func(s *Settings) { s.AllowedFileNameChars = "abc123 -." }, false},
		{"unknown playlist format", func(s *Settings) { s.PlaylistFormat = "wpl" }, true},
		{"missing cover art", func(s *Settings) { s.CoverArtPath = "/definitely/not/here.png" }, true},
		{"audit without workers", func(s *Settings) { s.Audit = true; s.AuditConcurrency = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings(t)
			tt.modify(s)

			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("error %v does not wrap ErrInvalidSettings", err)
			}
		})
	}
}
