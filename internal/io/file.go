package ioutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultAllowedChars is the allow-list used for generated directory and
// file names: letters, digits, dash, underscore, dot, parentheses and space.
const DefaultAllowedChars = "-_.() " +
	"abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789"

// SanitizeFileName reduces name to characters found in allowed.
//
// The name is decomposed with Unicode NFKD first so accented letters keep
// their base letter ("é" becomes "e"); the remaining non-ASCII runes and
// every rune missing from allowed are dropped. The result may be empty.
//
// Example:
//
//	SanitizeFileName("Song: Part 1/2", DefaultAllowedChars) // "Song Part 12"
//	SanitizeFileName("Ünïcödé", DefaultAllowedChars)        // "Unicode"
func SanitizeFileName(name, allowed string) string {
	decomposed := norm.NFKD.String(name)

	var sb strings.Builder
	sb.Grow(len(decomposed))
	for _, r := range decomposed {
		if r > 0x7f {
			continue
		}
		if strings.ContainsRune(allowed, r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// EnsureDir creates a directory and all parent directories if they don't
// exist.
//
// Directories are created with mode 0755. An existing directory is not an
// error; any other failure, including an existing non-directory at path,
// is returned.
func EnsureDir(path string) error {
	err := os.MkdirAll(path, 0755)
	if err != nil && errors.Is(err, fs.ErrExist) {
		if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			return nil
		}
	}
	return err
}

// CopyFile copies a file from source to destination.
//
// The destination file is created with mode 0644 if it doesn't exist,
// or truncated if it does.
func CopyFile(ctx context.Context, src, dst string) error {
	return CopyFileWithHeader(ctx, src, 0, dst, nil)
}

// CopyFileWithHeader writes header to dst followed by the bytes of src
// starting at offset skip.
//
// It is used to put a freshly rendered tag in front of a template's audio
// payload without rewriting the file twice.
func CopyFileWithHeader(ctx context.Context, src string, skip int64, dst string, header []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	if skip > 0 {
		if _, err := sourceFile.Seek(skip, io.SeekStart); err != nil {
			return fmt.Errorf("seek %s: %w", src, err)
		}
	}

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	if len(header) > 0 {
		if _, err := destFile.Write(header); err != nil {
			destFile.Close()
			return err
		}
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		return err
	}

	return destFile.Close()
}

// IsSanitized reports whether name is unchanged by SanitizeFileName.
func IsSanitized(name, allowed string) bool {
	return SanitizeFileName(name, allowed) == name
}
