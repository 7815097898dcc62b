package generate

import (
	"context"
	"fmt"

	"github.com/exaile/exaile-test-files/internal/audio"
	"github.com/exaile/exaile-test-files/internal/config"
	ioutils "github.com/exaile/exaile-test-files/internal/io"
)

// NewMaterializer returns the ID3 tagger configured by settings, loading
// and scaling the cover art if one is set.
func NewMaterializer(ctx context.Context, settings *config.Settings) (*audio.Tagger, error) {
	cfg := &audio.TagConfig{StripTemplateFrames: settings.StripTemplateFrames}

	if settings.CoverArtPath != "" {
		art, err := ioutils.LoadCoverArt(ctx, settings.CoverArtPath, settings.CoverArtMaxSize)
		if err != nil {
			return nil, fmt.Errorf("load cover art: %w", err)
		}
		cfg.Artwork = art
	}

	return audio.NewTagger(cfg), nil
}
