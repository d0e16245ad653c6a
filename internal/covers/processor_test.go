// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package covers

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, createTestImage(width, height)); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// webpBytes is a 1x1 lossless WebP image.
var webpBytes = []byte("RIFF\x1a\x00\x00\x00WEBPVP8L\x0d\x00\x00\x00\x2f\x00\x00\x00\x10\x07\x10\x11\x11\x88\x88\xfe\x07\x00")

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name     string
		game     string
		uploaded string
		want     error
	}{
		{"exact match", "Halo", "Halo.PNG", nil},
		{"name with spaces", "Super Mario", "Super Mario.PNG", nil},
		{"lowercase extension", "Halo", "Halo.png", ErrFilenameMismatch},
		{"different name", "Halo", "halo.PNG", ErrFilenameMismatch},
		{"jpeg", "Halo", "Halo.jpg", ErrNotPNG},
		{"no extension", "Halo", "Halo", ErrNotPNG},
		{"traversal in name", "../etc", "../etc.PNG", ErrInvalidName},
		{"backslash in name", `a\b`, `a\b.PNG`, ErrInvalidName},
		{"empty name", "", ".PNG", ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateFilename(tt.game, tt.uploaded); !errors.Is(err, tt.want) {
				t.Errorf("ValidateFilename(%q, %q) = %v, want %v", tt.game, tt.uploaded, err, tt.want)
			}
		})
	}
}

func TestSave_WritesOriginalAndThumbnail(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)
	data := pngBytes(t, 600, 400)

	res, err := p.Save(bytes.NewReader(data), "Halo", "Halo.PNG")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if res.Width != 600 || res.Height != 400 {
		t.Errorf("dimensions = %dx%d, want 600x400", res.Width, res.Height)
	}
	if res.Path != filepath.Join(dir, "Halo.PNG") {
		t.Errorf("Path = %q", res.Path)
	}

	stored, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("reading original: %v", err)
	}
	if !bytes.Equal(stored, data) {
		t.Error("stored original differs from upload")
	}

	f, err := os.Open(filepath.Join(dir, ThumbnailDir, "Halo.PNG"))
	if err != nil {
		t.Fatalf("opening thumbnail: %v", err)
	}
	defer func() { _ = f.Close() }()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decoding thumbnail: %v", err)
	}
	if cfg.Width != ThumbnailWidth || cfg.Height != 200 {
		t.Errorf("thumbnail = %dx%d, want %dx200", cfg.Width, cfg.Height, ThumbnailWidth)
	}
}

func TestSave_SmallImageThumbnailKeepsSize(t *testing.T) {
	p := NewProcessor(t.TempDir())

	res, err := p.Save(bytes.NewReader(pngBytes(t, 40, 30)), "Tetris", "Tetris.PNG")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	f, err := os.Open(res.ThumbPath)
	if err != nil {
		t.Fatalf("opening thumbnail: %v", err)
	}
	defer func() { _ = f.Close() }()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decoding thumbnail: %v", err)
	}
	if cfg.Width != 40 || cfg.Height != 30 {
		t.Errorf("thumbnail = %dx%d, want 40x30", cfg.Width, cfg.Height)
	}
}

func TestSave_RejectsNonPNGContent(t *testing.T) {
	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, createTestImage(10, 10), nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"jpeg renamed", jpg.Bytes()},
		{"webp renamed", webpBytes},
		{"not an image", []byte("hello world")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			p := NewProcessor(dir)

			_, err := p.Save(bytes.NewReader(tt.data), "Halo", "Halo.PNG")
			if !errors.Is(err, ErrNotPNG) {
				t.Fatalf("err = %v, want ErrNotPNG", err)
			}
			if _, statErr := os.Stat(filepath.Join(dir, "Halo.PNG")); !os.IsNotExist(statErr) {
				t.Error("rejected upload was written to disk")
			}
		})
	}

	_, err := NewProcessor(t.TempDir()).Save(bytes.NewReader(jpg.Bytes()), "Halo", "Halo.PNG")
	if err == nil || !strings.Contains(err.Error(), "jpeg") {
		t.Errorf("error %v should name the detected format", err)
	}
}

func TestSave_RejectsMismatchedFilename(t *testing.T) {
	p := NewProcessor(t.TempDir())

	_, err := p.Save(bytes.NewReader(pngBytes(t, 10, 10)), "Halo", "cover.PNG")
	if !errors.Is(err, ErrFilenameMismatch) {
		t.Errorf("err = %v, want ErrFilenameMismatch", err)
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	if _, err := p.Save(bytes.NewReader(pngBytes(t, 10, 10)), "Halo", "Halo.PNG"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := p.Remove("Halo"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	for _, path := range []string{filepath.Join(dir, "Halo.PNG"), filepath.Join(dir, ThumbnailDir, "Halo.PNG")} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s still exists", path)
		}
	}

	if err := p.Remove("Halo"); err != nil {
		t.Errorf("second Remove: %v", err)
	}
}

func TestSave_KeepsTrailingSpaceInName(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	if _, err := p.Save(bytes.NewReader(pngBytes(t, 10, 10)), "Doom ", "Doom .PNG"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Doom .PNG")); err != nil {
		t.Errorf("cover not written under the verbatim name: %v", err)
	}
}

func TestRename(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	if _, err := p.Save(bytes.NewReader(pngBytes(t, 10, 10)), "Halo", "Halo.PNG"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := p.Rename("Halo", "Halo 2"); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	for _, sub := range []string{"", ThumbnailDir} {
		if _, err := os.Stat(filepath.Join(dir, sub, "Halo.PNG")); !os.IsNotExist(err) {
			t.Errorf("old file in %q still exists", sub)
		}
		if _, err := os.Stat(filepath.Join(dir, sub, "Halo 2.PNG")); err != nil {
			t.Errorf("renamed file in %q missing: %v", sub, err)
		}
	}

	// Games without a cover rename cleanly.
	if err := p.Rename("Tetris", "Tetris 99"); err != nil {
		t.Errorf("Rename without files: %v", err)
	}
	if err := p.Rename("Halo 2", "../Halo"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Rename to traversal name: err = %v, want ErrInvalidName", err)
	}
}
