// Package audit checks a generated collection tree against the rules the
// generator guarantees: layout depth, allowed names, gap-free track
// numbering, group sizes and tag values.
package audit

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
	"github.com/exaile/exaile-test-files/internal/config"
	ioutils "github.com/exaile/exaile-test-files/internal/io"
	"golang.org/x/sync/errgroup"
)

// Options configures an Auditor.
type Options struct {
	// Ext is the item extension (with dot); other files are ignored.
	Ext string

	// AllowedChars is the allow-list every directory and file name must
	// satisfy.
	AllowedChars string

	AlbumsPerArtistMin, AlbumsPerArtistMax int
	SongsPerAlbumMin, SongsPerAlbumMax     int

	// ReadTags enables reading each item's tags.
	ReadTags bool

	// Concurrency bounds the number of files read at once.
	Concurrency int
}

// OptionsFromSettings derives audit options from generator settings.
func OptionsFromSettings(s *config.Settings) Options {
	return Options{
		Ext:                path.Ext(s.TemplatePath),
		AllowedChars:       s.AllowedFileNameChars,
		AlbumsPerArtistMin: s.AlbumsPerArtistMin,
		AlbumsPerArtistMax: s.AlbumsPerArtistMax,
		SongsPerAlbumMin:   s.SongsPerAlbumMin,
		SongsPerAlbumMax:   s.SongsPerAlbumMax,
		ReadTags:           true,
		Concurrency:        s.AuditConcurrency,
	}
}

// Problem is one rule violation.
type Problem struct {
	Path    string
	Message string
}

func (p Problem) String() string {
	return p.Path + ": " + p.Message
}

// Report summarises an audited tree.
type Report struct {
	Artists  int
	Albums   int
	Items    int
	Problems []Problem
}

// OK reports whether the tree passed every check.
func (r Report) OK() bool {
	return len(r.Problems) == 0
}

// Auditor checks generated trees.
type Auditor struct {
	opts Options
}

// NewAuditor creates an Auditor.
func NewAuditor(opts Options) *Auditor {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.AllowedChars == "" {
		opts.AllowedChars = ioutils.DefaultAllowedChars
	}
	return &Auditor{opts: opts}
}

type item struct {
	path   string
	album  string // album directory, slash separated
	artist string // artist directory
	number int

	tags      tag.Metadata
	tagsError error
}

// Audit walks fsys (rooted at the collection's output directory) and
// returns every problem it finds. The error is non-nil only when the tree
// cannot be read at all.
func (a *Auditor) Audit(ctx context.Context, fsys fs.FS) (Report, error) {
	var (
		report  Report
		items   []*item
		artists = make(map[string]int) // artist dir -> album count
		albums  = make(map[string]int) // album dir -> item count
	)

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}

		depth := strings.Count(p, "/")
		if !ioutils.IsSanitized(d.Name(), a.opts.AllowedChars) {
			report.problem(p, "name contains characters outside the allow-list")
		}

		if d.IsDir() {
			switch depth {
			case 0:
				artists[p] = 0
			case 1:
				artists[path.Dir(p)]++
				albums[p] = 0
			default:
				report.problem(p, "unexpected directory below album level")
			}
			return nil
		}

		if path.Ext(p) != a.opts.Ext {
			return nil
		}
		if depth != 2 {
			report.problem(p, fmt.Sprintf("item at depth %d, want 3", depth+1))
			return nil
		}

		it, ok := parseItemName(p, a.opts.Ext)
		if !ok {
			report.problem(p, `file name does not start with "<n> - "`)
			return nil
		}
		albums[it.album]++
		items = append(items, it)
		return nil
	})
	if err != nil {
		return Report{}, err
	}

	report.Artists = len(artists)
	report.Albums = len(albums)
	report.Items = len(items)

	a.checkNumbering(&report, items)
	a.checkBounds(&report, artists, albums)

	if a.opts.ReadTags {
		if err := a.readTags(ctx, fsys, items); err != nil {
			return report, err
		}
		a.checkTags(&report, items)
	}

	sort.Slice(report.Problems, func(i, j int) bool {
		if report.Problems[i].Path != report.Problems[j].Path {
			return report.Problems[i].Path < report.Problems[j].Path
		}
		return report.Problems[i].Message < report.Problems[j].Message
	})
	return report, nil
}

func (r *Report) problem(p, msg string) {
	r.Problems = append(r.Problems, Problem{Path: p, Message: msg})
}

func parseItemName(p, ext string) (*item, bool) {
	name := strings.TrimSuffix(path.Base(p), ext)
	prefix, _, ok := strings.Cut(name, " - ")
	if !ok {
		return nil, false
	}
	n, err := strconv.Atoi(prefix)
	if err != nil || n < 1 {
		return nil, false
	}

	album := path.Dir(p)
	return &item{
		path:   p,
		album:  album,
		artist: path.Dir(album),
		number: n,
	}, true
}

// checkNumbering requires the numbers inside each album to be 1..n.
func (a *Auditor) checkNumbering(report *Report, items []*item) {
	numbers := make(map[string][]int)
	for _, it := range items {
		numbers[it.album] = append(numbers[it.album], it.number)
	}

	for album, ns := range numbers {
		sort.Ints(ns)
		for i, n := range ns {
			if n != i+1 {
				report.problem(album, fmt.Sprintf("track numbers %v are not 1..%d", ns, len(ns)))
				break
			}
		}
	}
}

// checkBounds checks group sizes. Only the last album and the last artist
// of a run can be short, so at most one undersized group of each kind is
// accepted.
func (a *Auditor) checkBounds(report *Report, artists, albums map[string]int) {
	checkGroups(report, albums, a.opts.SongsPerAlbumMin, a.opts.SongsPerAlbumMax, "tracks")
	checkGroups(report, artists, a.opts.AlbumsPerArtistMin, a.opts.AlbumsPerArtistMax, "albums")
}

func checkGroups(report *Report, groups map[string]int, lo, hi int, what string) {
	if lo <= 0 && hi <= 0 {
		return
	}

	var short []string
	for dir, n := range groups {
		if hi > 0 && n > hi {
			report.problem(dir, fmt.Sprintf("%d %s, more than %d", n, what, hi))
		}
		if n < lo {
			short = append(short, dir)
		}
	}
	if len(short) > 1 {
		sort.Strings(short)
		for _, dir := range short {
			report.problem(dir, fmt.Sprintf("%d %s, fewer than %d", groups[dir], what, lo))
		}
	}
}

func (a *Auditor) readTags(ctx context.Context, fsys fs.FS, items []*item) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)

	for _, it := range items {
		it := it
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, it.path)
			if err != nil {
				it.tagsError = err
				return nil
			}
			it.tags, it.tagsError = tag.ReadFrom(bytes.NewReader(data))
			return nil
		})
	}

	return g.Wait()
}

// checkTags requires every item to be tagged, the title to match the file
// name and artist/album tags to agree within each directory.
func (a *Auditor) checkTags(report *Report, items []*item) {
	artistTags := make(map[string]string)
	albumTags := make(map[string]string)

	for _, it := range items {
		if it.tagsError != nil {
			report.problem(it.path, fmt.Sprintf("reading tags: %v", it.tagsError))
			continue
		}

		want := ioutils.SanitizeFileName(fmt.Sprintf("%d - %s%s", it.number, it.tags.Title(), a.opts.Ext), a.opts.AllowedChars)
		if want != path.Base(it.path) {
			report.problem(it.path, fmt.Sprintf("title tag %q does not match the file name", it.tags.Title()))
		}

		if prev, ok := artistTags[it.artist]; ok && prev != it.tags.Artist() {
			report.problem(it.path, fmt.Sprintf("artist tag %q differs from %q in the same directory", it.tags.Artist(), prev))
		} else {
			artistTags[it.artist] = it.tags.Artist()
		}

		if prev, ok := albumTags[it.album]; ok && prev != it.tags.Album() {
			report.problem(it.path, fmt.Sprintf("album tag %q differs from %q in the same directory", it.tags.Album(), prev))
		} else {
			albumTags[it.album] = it.tags.Album()
		}
	}
}
