package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/bogem/id3v2"
	ioutils "github.com/exaile/exaile-test-files/internal/io"
)

// ErrUnsupportedTag is returned when a tag key has no ID3 frame mapping.
var ErrUnsupportedTag = errors.New("unsupported tag")

// frameIDs maps the generator's tag keys to ID3v2 text frames.
var frameIDs = map[string]string{
	"artist": "TPE1",
	"album":  "TALB",
	"title":  "TIT2",
}

// TagConfig holds tagging options.
type TagConfig struct {
	// StripTemplateFrames drops every frame the template already carries
	// instead of keeping them next to the generated ones.
	StripTemplateFrames bool

	// Artwork is embedded as the front cover (APIC) when non-nil.
	// It must be JPEG data.
	Artwork []byte
}

// Tagger produces tagged copies of a template MP3.
//
// Each output file is a freshly rendered ID3v2.4 tag followed by the
// template's audio payload. Frames are written in sorted frame-id order, so
// the same tags always produce the same bytes.
//
// Example:
//
//	tagger := NewTagger(nil)
//	err := tagger.Materialize(ctx, "click.mp3", "/out/A/B/1 - c.mp3", map[string]string{
//	    "artist": "A", "album": "B", "title": "c",
//	})
type Tagger struct {
	config *TagConfig

	mu        sync.Mutex
	templates map[string]*template
}

// template is a parsed template file: its bytes and where its audio starts.
type template struct {
	data   []byte
	offset int64
}

// NewTagger creates a new Tagger. A nil config keeps template frames and
// embeds no artwork.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = &TagConfig{}
	}
	return &Tagger{
		config:    config,
		templates: make(map[string]*template),
	}
}

// Materialize writes destPath as a copy of templatePath carrying tags.
//
// It is a single attempt: on failure the destination may be left partially
// written and nothing is retried.
func (t *Tagger) Materialize(ctx context.Context, templatePath, destPath string, tags map[string]string) error {
	tmpl, err := t.load(templatePath)
	if err != nil {
		return err
	}

	tag, err := tmpl.tag(t.config.StripTemplateFrames)
	if err != nil {
		return fmt.Errorf("parse template tag %s: %w", templatePath, err)
	}

	for key, value := range tags {
		id, ok := frameIDs[key]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnsupportedTag, key)
		}
		tag.DeleteFrames(id)
		tag.AddTextFrame(id, id3v2.EncodingUTF8, value)
	}

	if t.config.Artwork != nil {
		tag.DeleteFrames(tag.CommonID("Attached picture"))
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: "Cover",
			Picture:     t.config.Artwork,
		})
	}

	header, err := renderTag(tag)
	if err != nil {
		return fmt.Errorf("render tag for %s: %w", destPath, err)
	}

	return ioutils.CopyFileWithHeader(ctx, templatePath, tmpl.offset, destPath, header)
}

// load reads and caches a template.
func (t *Tagger) load(path string) (*template, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tmpl, ok := t.templates[path]; ok {
		return tmpl, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	tmpl := &template{data: data, offset: tagSize(data)}
	t.templates[path] = tmpl
	return tmpl, nil
}

// tag returns a fresh, editable copy of the template's tag. Templates
// without a tag, and any template when strip is set, start from an empty
// tag; only the tag bytes are handed to the parser.
func (tmpl *template) tag(strip bool) (*id3v2.Tag, error) {
	if tmpl.offset == 0 || strip {
		return id3v2.NewEmptyTag(), nil
	}
	return id3v2.ParseReader(bytes.NewReader(tmpl.data[:tmpl.offset]), id3v2.Options{Parse: true})
}

// tagSize returns the size of the ID3v2 tag at the start of data,
// header and footer included, or 0 if data has no tag.
func tagSize(data []byte) int64 {
	if len(data) < 10 || string(data[:3]) != "ID3" {
		return 0
	}

	size := int64(synchsafeDecode(data[6:10])) + 10
	if data[5]&0x10 != 0 {
		size += 10 // footer
	}
	if size > int64(len(data)) {
		return int64(len(data))
	}
	return size
}

// renderTag encodes tag as ID3v2.4 with frames ordered by frame id and,
// within an id, by unique identifier.
func renderTag(tag *id3v2.Tag) ([]byte, error) {
	all := tag.AllFrames()
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var frames bytes.Buffer
	for _, id := range ids {
		if len(id) != 4 {
			continue
		}
		framers := append([]id3v2.Framer(nil), all[id]...)
		sort.SliceStable(framers, func(i, j int) bool {
			return framers[i].UniqueIdentifier() < framers[j].UniqueIdentifier()
		})
		for _, f := range framers {
			if err := writeFrame(&frames, id, f); err != nil {
				return nil, err
			}
		}
	}

	if frames.Len() == 0 {
		return nil, nil
	}

	var out bytes.Buffer
	out.WriteString("ID3")
	out.Write([]byte{4, 0, 0}) // version 2.4.0, no flags
	out.Write(synchsafeEncode(frames.Len()))
	out.Write(frames.Bytes())
	return out.Bytes(), nil
}

func writeFrame(w io.Writer, id string, f id3v2.Framer) error {
	var body bytes.Buffer
	if _, err := f.WriteTo(&body); err != nil {
		return fmt.Errorf("frame %s: %w", id, err)
	}

	header := make([]byte, 0, 10)
	header = append(header, id...)
	header = append(header, synchsafeEncode(body.Len())...)
	header = append(header, 0, 0) // frame flags

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(body.Bytes())
	return err
}

func synchsafeEncode(n int) []byte {
	return []byte{
		byte(n>>21) & 0x7f,
		byte(n>>14) & 0x7f,
		byte(n>>7) & 0x7f,
		byte(n) & 0x7f,
	}
}

func synchsafeDecode(b []byte) int {
	return int(b[0]&0x7f)<<21 | int(b[1]&0x7f)<<14 | int(b[2]&0x7f)<<7 | int(b[3]&0x7f)
}
