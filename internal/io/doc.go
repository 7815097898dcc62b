// Package ioutils provides file system and image utilities for the
// collection generator.
//
// This package contains functions for:
//   - Filename sanitization against an explicit allow-list
//   - Idempotent directory creation
//   - Copying template bytes, optionally behind a new header
//   - Preparing cover art for embedding
//
// # Filename Sanitization
//
// SanitizeFileName decomposes the name (Unicode NFKD), drops everything
// that is not ASCII and keeps only allowed characters:
//
//	safe := ioutils.SanitizeFileName("Café: Live!", ioutils.DefaultAllowedChars)
//	// "Cafe Live"
//
// # File Operations
//
//	err := ioutils.EnsureDir("/out/Artist/Album")
//	err = ioutils.CopyFile(ctx, "/templates/click.mp3", "/out/Artist/Album/1 - a.mp3")
//
// # Cover Art
//
//	jpeg, err := ioutils.LoadCoverArt(ctx, "cover.png", 500)
package ioutils
