package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
)

const payload = "not really mpeg audio"

func writePlainTemplate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.mp3")
	if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeTaggedTemplate(t *testing.T) string {
	t.Helper()
	tag := id3v2.NewEmptyTag()
	tag.SetArtist("Template Artist")
	tag.SetGenre("Rock")

	var buf bytes.Buffer
	if _, err := tag.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	buf.WriteString(payload)

	path := filepath.Join(t.TempDir(), "tagged.mp3")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readTag(t *testing.T, path string) *id3v2.Tag {
	t.Helper()
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	t.Cleanup(func() { tag.Close() })
	return tag
}

func readPayload(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data[tagSize(data):])
}

var testTags = map[string]string{
	"artist": "Art!st",
	"album":  "Alb/um",
	"title":  "T*tle",
}

func TestTagger_Materialize(t *testing.T) {
	tmpl := writePlainTemplate(t)
	dst := filepath.Join(t.TempDir(), "out.mp3")

	if err := NewTagger(nil).Materialize(context.Background(), tmpl, dst, testTags); err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	tag := readTag(t, dst)
	if tag.Artist() != "Art!st" || tag.Album() != "Alb/um" || tag.Title() != "T*tle" {
		t.Errorf("tags = %q / %q / %q", tag.Artist(), tag.Album(), tag.Title())
	}
	if got := readPayload(t, dst); got != payload {
		t.Errorf("payload = %q, want %q", got, payload)
	}
}

func TestTagger_Deterministic(t *testing.T) {
	tmpl := writeTaggedTemplate(t)
	dir := t.TempDir()
	tagger := NewTagger(nil)

	var outputs [][]byte
	for _, name := range []string{"a.mp3", "b.mp3", "c.mp3"} {
		dst := filepath.Join(dir, name)
		if err := tagger.Materialize(context.Background(), tmpl, dst, testTags); err != nil {
			t.Fatal(err)
		}
		data, _ := os.ReadFile(dst)
		outputs = append(outputs, data)
	}

	if !bytes.Equal(outputs[0], outputs[1]) || !bytes.Equal(outputs[1], outputs[2]) {
		t.Error("same template and tags produced different bytes")
	}
}

func TestTagger_TemplateFrames(t *testing.T) {
	tests := []struct {
		name      string
		strip     bool
		wantGenre string
	}{
		{"kept", false, "Rock"},
		{"stripped", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := writeTaggedTemplate(t)
			dst := filepath.Join(t.TempDir(), "out.mp3")

			tagger := NewTagger(&TagConfig{StripTemplateFrames: tt.strip})
			if err := tagger.Materialize(context.Background(), tmpl, dst, testTags); err != nil {
				t.Fatal(err)
			}

			tag := readTag(t, dst)
			if tag.Genre() != tt.wantGenre {
				t.Errorf("Genre() = %q, want %q", tag.Genre(), tt.wantGenre)
			}
			if tag.Artist() != "Art!st" {
				t.Errorf("template artist not replaced: %q", tag.Artist())
			}
			if got := readPayload(t, dst); got != payload {
				t.Errorf("payload = %q, want %q", got, payload)
			}
		})
	}
}

func TestTagger_Artwork(t *testing.T) {
	tmpl := writePlainTemplate(t)
	dst := filepath.Join(t.TempDir(), "out.mp3")
	art := []byte{0xff, 0xd8, 0xff, 0xe0, 1, 2, 3}

	if err := NewTagger(&TagConfig{Artwork: art}).Materialize(context.Background(), tmpl, dst, testTags); err != nil {
		t.Fatal(err)
	}

	tag := readTag(t, dst)
	pictures := tag.GetFrames(tag.CommonID("Attached picture"))
	if len(pictures) != 1 {
		t.Fatalf("got %d pictures, want 1", len(pictures))
	}
	pic, ok := pictures[0].(id3v2.PictureFrame)
	if !ok {
		t.Fatalf("frame is %T", pictures[0])
	}
	if !bytes.Equal(pic.Picture, art) || pic.PictureType != id3v2.PTFrontCover {
		t.Errorf("picture frame = %+v", pic)
	}
}

func TestTagger_UnsupportedTag(t *testing.T) {
	tmpl := writePlainTemplate(t)
	dst := filepath.Join(t.TempDir(), "out.mp3")

	err := NewTagger(nil).Materialize(context.Background(), tmpl, dst, map[string]string{"genre": "x"})
	if !errors.Is(err, ErrUnsupportedTag) {
		t.Errorf("err = %v, want ErrUnsupportedTag", err)
	}
}

func TestTagger_MissingTemplate(t *testing.T) {
	dir := t.TempDir()
	err := NewTagger(nil).Materialize(context.Background(), filepath.Join(dir, "none.mp3"), filepath.Join(dir, "out.mp3"), testTags)
	if err == nil {
		t.Error("expected error for missing template")
	}
}

func TestTagger_ShortUntaggedTemplates(t *testing.T) {
	for _, size := range []int{0, 1, 7, 9, 10, 11} {
		t.Run(fmt.Sprintf("%d bytes", size), func(t *testing.T) {
			dir := t.TempDir()
			tmpl := filepath.Join(dir, "short.mp3")
			data := bytes.Repeat([]byte{0}, size)
			if err := os.WriteFile(tmpl, data, 0644); err != nil {
				t.Fatal(err)
			}

			dst := filepath.Join(dir, "out.mp3")
			tags := map[string]string{"artist": "a", "album": "b", "title": "c"}
			if err := NewTagger(nil).Materialize(context.Background(), tmpl, dst, tags); err != nil {
				t.Fatalf("Materialize: %v", err)
			}

			tag, err := id3v2.Open(dst, id3v2.Options{Parse: true})
			if err != nil {
				t.Fatal(err)
			}
			defer tag.Close()
			if tag.Title() != "c" {
				t.Errorf("Title = %q, want %q", tag.Title(), "c")
			}
			if got := readPayload(t, dst); got != string(data) {
				t.Errorf("payload = %q, want %d zero bytes", got, size)
			}
		})
	}
}

func TestSynchsafe(t *testing.T) {
	for _, n := range []int{0, 1, 127, 128, 16383, 1 << 20, 1<<28 - 1} {
		if got := synchsafeDecode(synchsafeEncode(n)); got != n {
			t.Errorf("round trip %d = %d", n, got)
		}
	}
}
