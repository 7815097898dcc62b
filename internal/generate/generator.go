package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/exaile/exaile-test-files/internal/audio"
	"github.com/exaile/exaile-test-files/internal/config"
	ioutils "github.com/exaile/exaile-test-files/internal/io"
	"github.com/exaile/exaile-test-files/internal/model"
	"github.com/exaile/exaile-test-files/internal/random"
)

// Materializer produces one output file from the template and applies tags.
type Materializer interface {
	Materialize(ctx context.Context, templatePath, destPath string, tags map[string]string) error
}

// Recorder receives every item once its file has been written.
type Recorder interface {
	Record(ctx context.Context, index int, track *model.Track) error
}

// Result reports what a run produced.
type Result struct {
	Artists int
	Albums  int
	Titles  int

	// Seed is the seed the run used; replaying it reproduces the tree.
	Seed int64

	Elapsed time.Duration
}

// Generator builds collections according to settings.
type Generator struct {
	settings     *config.Settings
	materializer Materializer
	recorder     Recorder
	playlist     *audio.PlaylistCreator

	total int64
	done  int64

	onProgress func(ProgressEvent)
}

// NewGenerator creates a Generator. Playlists are written when
// settings.CreatePlaylist is set.
func NewGenerator(settings *config.Settings, materializer Materializer, onProgress func(ProgressEvent)) *Generator {
	g := &Generator{
		settings:     settings,
		materializer: materializer,
		onProgress:   onProgress,
	}

	if settings.CreatePlaylist {
		format, err := audio.ParsePlaylistFormat(settings.PlaylistFormat)
		if err != nil {
			g.progress(ProgressEvent{Message: fmt.Sprintf("%v, using m3u", err), Level: LevelWarning})
		}
		g.playlist = audio.NewPlaylistCreator(format, settings.M3UExtended)
	}

	return g
}

// SetRecorder attaches a Recorder; nil detaches it.
func (g *Generator) SetRecorder(r Recorder) {
	g.recorder = r
}

// GetProgress returns how many of the current run's items are written.
// It is safe to call while Generate runs.
func (g *Generator) GetProgress() (done, total int64) {
	return atomic.LoadInt64(&g.done), atomic.LoadInt64(&g.total)
}

// run is the state of one Generate call. It owns the random source and
// both sequencers and is dropped when the call returns.
type run struct {
	src       *random.Source
	artistSeq *random.Sequencer
	albumSeq  *random.Sequencer
	names     *model.NameRegistry

	artist *model.Artist
	album  *model.Album

	result Result
}

// Generate writes count items into settings.OutputPath using templatePath.
//
// Configuration problems are reported before anything is written. After
// that, the first failure to create a directory or materialize an item
// aborts the run; items already written are left in place. The returned
// Result counts what was generated up to that point.
func (g *Generator) Generate(ctx context.Context, count int, templatePath string) (Result, error) {
	started := time.Now()
	s := g.settings

	if count < 0 {
		return Result{}, fmt.Errorf("%w: count must not be negative, got %d", config.ErrInvalidSettings, count)
	}
	if err := s.ValidateRanges(); err != nil {
		return Result{}, err
	}
	if err := config.CheckTemplate(templatePath); err != nil {
		return Result{}, err
	}
	if s.OutputPath == "" {
		return Result{}, fmt.Errorf("%w: output_path is required", config.ErrInvalidSettings)
	}

	seed := time.Now().UnixNano()
	if s.Seed != nil {
		seed = *s.Seed
	}

	if err := ioutils.EnsureDir(s.OutputPath); err != nil {
		return Result{Seed: seed}, fmt.Errorf("create output directory: %w", err)
	}

	src := random.NewSource(seed)
	r := &run{
		src:       src,
		artistSeq: random.NewSequencer(src, s.AlbumsPerArtistMin, s.AlbumsPerArtistMax),
		albumSeq:  random.NewSequencer(src, s.SongsPerAlbumMin, s.SongsPerAlbumMax),
		names:     model.NewNameRegistry(s.AllowedFileNameChars),
		result:    Result{Seed: seed},
	}

	atomic.StoreInt64(&g.total, int64(count))
	atomic.StoreInt64(&g.done, 0)

	g.progress(ProgressEvent{Message: fmt.Sprintf("Generating %d items into %s (seed %d)", count, s.OutputPath, seed), Level: LevelInfo})

	ext := filepath.Ext(templatePath)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return g.finish(r, started), err
		}
		if err := g.step(ctx, r, i, templatePath, ext); err != nil {
			return g.finish(r, started), err
		}
		atomic.AddInt64(&g.done, 1)
	}

	g.closeAlbum(r.album)

	result := g.finish(r, started)
	g.progress(ProgressEvent{
		Message: fmt.Sprintf("Generated %d artists, %d albums, %d tracks in %s", result.Artists, result.Albums, result.Titles, result.Elapsed.Round(time.Millisecond)),
		Level:   LevelSuccess,
	})
	return result, nil
}

// step generates item i. Draw order: album group size, artist group size,
// artist name, album name (all only on boundaries), then the title.
func (g *Generator) step(ctx context.Context, r *run, i int, templatePath, ext string) error {
	s := g.settings

	if r.albumSeq.Advance() {
		g.closeAlbum(r.album)
		r.result.Albums++

		// The first album always opens the first artist, so r.artist is
		// set before NewAlbum needs it.
		if r.artistSeq.Advance() {
			r.result.Artists++
			r.artist = model.NewArtist(r.src.String(s.ArtistNameMin, s.ArtistNameMax), s.OutputPath, r.names)
			g.progress(ProgressEvent{Message: fmt.Sprintf("Artist %q -> %s", r.artist.Name, r.artist.Path), Level: LevelVerbose})
		}

		r.album = model.NewAlbum(r.artist, r.src.String(s.AlbumNameMin, s.AlbumNameMax), r.names)
		if err := ioutils.EnsureDir(r.album.Path); err != nil {
			return fmt.Errorf("create album directory %s: %w", r.album.Path, err)
		}
		g.progress(ProgressEvent{Message: fmt.Sprintf("Album %q -> %s", r.album.Title, r.album.Path), Level: LevelVerbose})
	}

	title := r.src.String(s.TitleMin, s.TitleMax)
	r.result.Titles++

	track := model.NewTrack(r.album, r.albumSeq.Position(), title, ext, s.AllowedFileNameChars)
	r.album.Tracks = append(r.album.Tracks, track)

	if err := g.materializer.Materialize(ctx, templatePath, track.Path, track.Tags()); err != nil {
		return fmt.Errorf("materialize %s: %w", track.Path, err)
	}

	if g.recorder != nil {
		if err := g.recorder.Record(ctx, i, track); err != nil {
			return fmt.Errorf("record %s: %w", track.Path, err)
		}
	}
	return nil
}

// closeAlbum writes the playlist of a finished album, if enabled.
// Playlist failures are reported as warnings and do not stop the run.
func (g *Generator) closeAlbum(album *model.Album) {
	if g.playlist == nil || album == nil || len(album.Tracks) == 0 {
		return
	}

	path := album.PlaylistPath(g.settings.AllowedFileNameChars, g.playlist.Format().Extension())
	content := g.playlist.CreatePlaylist(album)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		g.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		return
	}
	g.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist %s", path), Level: LevelVerbose})
}

func (g *Generator) finish(r *run, started time.Time) Result {
	r.result.Elapsed = time.Since(started)
	return r.result
}

func (g *Generator) progress(event ProgressEvent) {
	if g.onProgress != nil {
		g.onProgress(event)
	}
}

// IsConfigError reports whether err is a configuration error raised before
// generation started.
func IsConfigError(err error) bool {
	return errors.Is(err, config.ErrInvalidSettings)
}
