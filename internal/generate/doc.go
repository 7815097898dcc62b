// Package generate builds a synthetic music collection from a template
// file.
//
// # Generator
//
// The Generator walks count items and decides, from one seeded random
// source, where albums and artists begin and what everything is called:
//
//	gen := generate.NewGenerator(settings, tagger, func(event generate.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	result, err := gen.Generate(ctx, 1000, "click.mp3")
//	fmt.Printf("Artists: %d\nAlbums: %d\nTracks: %d\n", result.Artists, result.Albums, result.Titles)
//
// The output tree is always outdir/<artist>/<album>/<n> - <title><ext>.
// The same seed, count and template produce the same tree, names, tags and
// bytes.
//
// # Collaborators
//
// Output files are produced by a Materializer; NewMaterializer returns the
// ID3 one configured from settings. An optional Recorder receives every
// item after it is written (see package manifest).
//
// # Progress Tracking
//
// Progress is reported via a callback receiving ProgressEvent, and can be
// polled with GetProgress while Generate runs.
package generate
