package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/exaile/exaile-test-files/internal/audit"
	"github.com/exaile/exaile-test-files/internal/config"
	"github.com/exaile/exaile-test-files/internal/generate"
	"github.com/exaile/exaile-test-files/internal/manifest"
)

func main() {
	// Command line flags
	var (
		countFlag    = flag.Int("count", 0, "Number of items to generate (overrides config)")
		seedFlag     = flag.Int64("seed", 0, "Random seed; the same seed reproduces the same collection")
		templateFlag = flag.String("template", "", "Template audio file copied for every item")
		configFlag   = flag.String("config", "", "Path to config file (.json, .yaml or .yml)")
		playlistFlag = flag.Bool("playlist", false, "Create one playlist per album")
		coverFlag    = flag.String("cover", "", "Image embedded as front cover in every item")
		manifestFlag = flag.String("manifest", "", "SQLite file recording every generated item")
		auditFlag    = flag.Bool("audit", false, "Audit the collection after generating it")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Parse()

	if flag.NArg() == 0 && *configFlag == "" {
		fmt.Println("collection-gen - Generate a deterministic synthetic music collection")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  collection-gen -template <file> [options] <outdir>")
		fmt.Println("  collection-gen -config <file> [options] [outdir]")
		fmt.Println()
		fmt.Println("For interactive mode, use: collection-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags that were given explicitly
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "count":
			settings.Count = *countFlag
		case "seed":
			settings.Seed = seedFlag
		case "template":
			settings.TemplatePath = *templateFlag
		case "playlist":
			settings.CreatePlaylist = *playlistFlag
		case "cover":
			settings.CoverArtPath = *coverFlag
		case "manifest":
			settings.ManifestPath = *manifestFlag
		case "audit":
			settings.Audit = *auditFlag
		}
	})
	if flag.NArg() > 0 {
		settings.OutputPath = flag.Arg(0)
	}

	// Fix the seed now so the manifest and the summary report the same one
	if settings.Seed == nil {
		seed := time.Now().UnixNano()
		settings.Seed = &seed
	}

	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	materializer, err := generate.NewMaterializer(ctx, settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Create generator with progress callback
	generator := generate.NewGenerator(settings, materializer, func(event generate.ProgressEvent) {
		if event.Level == generate.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case generate.LevelError:
			prefix = "error: "
		case generate.LevelWarning:
			prefix = "warning: "
		case generate.LevelSuccess:
			prefix = "done: "
		case generate.LevelInfo:
			prefix = "info: "
		default:
			prefix = "   "
		}

		fmt.Println(prefix + event.Message)
	})

	// exit closes the manifest before leaving; os.Exit skips deferred calls.
	var store *manifest.Store
	exit := func(code int) {
		if store != nil {
			store.Close()
		}
		os.Exit(code)
	}

	var run *manifest.Run
	if settings.ManifestPath != "" {
		var err error
		store, err = manifest.NewStore(settings.ManifestPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening manifest: %v\n", err)
			exit(1)
		}

		// The transaction must outlive an interrupt so a finished run can
		// still be committed.
		run, err = store.BeginRun(context.Background(), manifest.RunInfo{
			Seed:       *settings.Seed,
			Count:      settings.Count,
			Template:   settings.TemplatePath,
			OutputPath: settings.OutputPath,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error starting manifest run: %v\n", err)
			exit(1)
		}
		generator.SetRecorder(run)
	}

	result, err := generator.Generate(ctx, settings.Count, settings.TemplatePath)
	if err != nil {
		if run != nil {
			run.Abort()
		}
		if errors.Is(err, context.Canceled) {
			fmt.Println("\nGeneration cancelled.")
			fmt.Printf("Seed: %d\n", result.Seed)
			exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error during generation: %v\n", err)
		exit(1)
	}

	if run != nil {
		if err := run.Finish(context.Background(), result); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing manifest: %v\n", err)
			exit(1)
		}
		fmt.Printf("Manifest run: %s\n", run.ID)
	}

	fmt.Println()
	fmt.Printf("Artists: %d\n", result.Artists)
	fmt.Printf("Albums: %d\n", result.Albums)
	fmt.Printf("Tracks: %d\n", result.Titles)
	fmt.Printf("Seed: %d\n", result.Seed)

	if settings.Audit {
		auditor := audit.NewAuditor(audit.OptionsFromSettings(settings))
		report, err := auditor.Audit(ctx, os.DirFS(settings.OutputPath))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error auditing %s: %v\n", settings.OutputPath, err)
			exit(1)
		}
		if !report.OK() {
			for _, p := range report.Problems {
				fmt.Fprintf(os.Stderr, "audit: %s\n", p)
			}
			fmt.Fprintf(os.Stderr, "Audit found %d problem(s)\n", len(report.Problems))
			exit(1)
		}
		fmt.Printf("Audit: %d artists, %d albums, %d items OK\n", report.Artists, report.Albums, report.Items)
	}

	if store != nil {
		store.Close()
	}
}
