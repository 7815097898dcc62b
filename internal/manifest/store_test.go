package manifest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/exaile/exaile-test-files/internal/config"
	"github.com/exaile/exaile-test-files/internal/generate"
	ioutils "github.com/exaile/exaile-test-files/internal/io"
	"github.com/exaile/exaile-test-files/internal/model"
	"github.com/kr/pretty"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "manifest.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_RecordAndList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	run, err := store.BeginRun(ctx, RunInfo{Seed: 42, Count: 2, Template: "click.mp3", OutputPath: "/out"})
	if err != nil {
		t.Fatal(err)
	}

	names := model.NewNameRegistry(ioutils.DefaultAllowedChars)
	artist := model.NewArtist("Art?", "/out", names)
	album := model.NewAlbum(artist, "Alb", names)
	for i, title := range []string{"one", "two"} {
		track := model.NewTrack(album, i+1, title, ".mp3", names.Allowed())
		if err := run.Record(ctx, i, track); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	if err := run.Finish(ctx, generate.Result{Artists: 1, Albums: 1, Titles: 2, Seed: 42}); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	items, err := store.Items(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []Item{
		{Index: 0, Path: "Art/Alb/1 - one.mp3", Artist: "Art?", Album: "Alb", Title: "one", Number: 1},
		{Index: 1, Path: "Art/Alb/2 - two.mp3", Artist: "Art?", Album: "Alb", Title: "two", Number: 2},
	}
	if diff := pretty.Diff(items, want); len(diff) > 0 {
		t.Errorf("items differ: %v", diff)
	}

	runs, err := store.Runs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || !runs[0].Finished || runs[0].Titles != 2 || runs[0].ID != run.ID {
		t.Errorf("runs = %+v", runs)
	}
}

func TestStore_Abort(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	run, err := store.BeginRun(ctx, RunInfo{Seed: 1, Count: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := run.Abort(); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Items(ctx, run.ID); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}

func TestStore_RecordsGeneratorRun(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	dir := t.TempDir()
	tmpl := filepath.Join(dir, "click.mp3")
	if err := os.WriteFile(tmpl, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}
	seed := int64(9)
	s := config.DefaultSettings()
	s.Seed = &seed
	s.OutputPath = filepath.Join(dir, "out")

	run, err := store.BeginRun(ctx, RunInfo{Seed: seed, Count: 40, Template: tmpl, OutputPath: s.OutputPath})
	if err != nil {
		t.Fatal(err)
	}

	tagger, err := generate.NewMaterializer(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	gen := generate.NewGenerator(s, tagger, nil)
	gen.SetRecorder(run)

	result, err := gen.Generate(ctx, 40, tmpl)
	if err != nil {
		t.Fatal(err)
	}
	if err := run.Finish(ctx, result); err != nil {
		t.Fatal(err)
	}

	items, err := store.Items(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 40 {
		t.Fatalf("recorded %d items, want 40", len(items))
	}
	for _, it := range items {
		if _, err := os.Stat(filepath.Join(s.OutputPath, filepath.FromSlash(it.Path))); err != nil {
			t.Errorf("recorded path %s does not exist: %v", it.Path, err)
		}
	}
}

func TestRun_FinishAfterGenerationContextCancelled(t *testing.T) {
	store := newTestStore(t)

	run, err := store.BeginRun(context.Background(), RunInfo{Seed: 7, Count: 1, Template: "click.mp3", OutputPath: "/out"})
	if err != nil {
		t.Fatal(err)
	}

	genCtx, cancel := context.WithCancel(context.Background())
	names := model.NewNameRegistry(ioutils.DefaultAllowedChars)
	album := model.NewAlbum(model.NewArtist("a", "/out", names), "b", names)
	if err := run.Record(genCtx, 0, model.NewTrack(album, 1, "c", ".mp3", names.Allowed())); err != nil {
		t.Fatal(err)
	}
	cancel()

	if err := run.Finish(context.Background(), generate.Result{Artists: 1, Albums: 1, Titles: 1, Seed: 7}); err != nil {
		t.Fatalf("Finish after cancel: %v", err)
	}

	items, err := store.Items(context.Background(), run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Path != "a/b/1 - c.mp3" {
		t.Errorf("items = %+v", items)
	}
}
