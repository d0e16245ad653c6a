// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package covers validates and stores uploaded game cover images.
package covers

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Cover upload errors.
var (
	ErrNotPNG            = errors.New("cover must be a PNG image")
	ErrFilenameMismatch  = errors.New("cover filename must be the game name followed by .PNG")
	ErrInvalidName       = errors.New("game name cannot be used as a file name")
	ErrImageTooLarge     = errors.New("cover image dimensions are too large")
	ErrMissingCoverImage = errors.New("cover image is required")
)

const (
	// ThumbnailWidth is the width of generated thumbnails in pixels.
	ThumbnailWidth = 300
	// ThumbnailDir is the subdirectory of the static directory holding thumbnails.
	ThumbnailDir = "thumbs"
	// maxPixels bounds decoded image size.
	maxPixels = 40_000_000
)

// SaveResult describes a stored cover.
type SaveResult struct {
	Filename  string
	Path      string
	ThumbPath string
	Width     int
	Height    int
	Size      int64
}

// Processor writes cover images into the static directory.
type Processor struct {
	staticDir string
}

// NewProcessor creates a processor writing into staticDir.
func NewProcessor(staticDir string) *Processor {
	return &Processor{staticDir: staticDir}
}

// StaticDir returns the directory covers are written to.
func (p *Processor) StaticDir() string {
	return p.staticDir
}

// Filename returns the stored file name of a game's cover.
func Filename(gameName string) string {
	return gameName + ".PNG"
}

// ValidateFilename checks the uploaded file name against the game name.
// The extension check is case-insensitive; the full name must match exactly.
func ValidateFilename(gameName, uploaded string) error {
	if err := validateName(gameName); err != nil {
		return err
	}
	if !strings.HasSuffix(strings.ToLower(uploaded), ".png") {
		return ErrNotPNG
	}
	if uploaded != Filename(gameName) {
		return ErrFilenameMismatch
	}
	return nil
}

func validateName(gameName string) error {
	switch {
	case strings.TrimSpace(gameName) == "",
		gameName == "." || gameName == "..",
		strings.ContainsAny(gameName, `/\`+"\x00"),
		filepath.Base(gameName) != gameName:
		return ErrInvalidName
	}
	return nil
}

// Save validates the upload and stores the original and a thumbnail.
func (p *Processor) Save(r io.Reader, gameName, uploadedName string) (*SaveResult, error) {
	if err := ValidateFilename(gameName, uploadedName); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPNG, err)
	}
	if format != "png" {
		return nil, fmt.Errorf("%w: got %s", ErrNotPNG, format)
	}
	if cfg.Width*cfg.Height > maxPixels {
		return nil, ErrImageTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	filename := Filename(gameName)
	path, err := p.saveFile("", filename, data)
	if err != nil {
		return nil, fmt.Errorf("failed to save cover: %w", err)
	}

	thumb, err := encodePNG(thumbnail(img))
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	thumbPath, err := p.saveFile(ThumbnailDir, filename, thumb)
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return &SaveResult{
		Filename:  filename,
		Path:      path,
		ThumbPath: thumbPath,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Size:      int64(len(data)),
	}, nil
}

// Remove deletes a game's cover and thumbnail. Missing files are ignored.
func (p *Processor) Remove(gameName string) error {
	if err := validateName(gameName); err != nil {
		return err
	}
	filename := Filename(gameName)
	for _, path := range []string{
		filepath.Join(p.staticDir, filename),
		filepath.Join(p.staticDir, ThumbnailDir, filename),
	} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}
	}
	return nil
}

// Rename moves a game's cover and thumbnail to the file names of newName.
// Missing files are ignored.
func (p *Processor) Rename(oldName, newName string) error {
	if err := validateName(oldName); err != nil {
		return err
	}
	if err := validateName(newName); err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	for _, dir := range []string{p.staticDir, filepath.Join(p.staticDir, ThumbnailDir)} {
		from := filepath.Join(dir, Filename(oldName))
		to := filepath.Join(dir, Filename(newName))
		if err := os.Rename(from, to); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to rename %s: %w", from, err)
		}
	}
	return nil
}

// thumbnail downsizes wide images; narrower ones are kept as is.
func thumbnail(img image.Image) image.Image {
	if img.Bounds().Dx() <= ThumbnailWidth {
		return img
	}
	return imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// saveFile creates the directory if needed and saves data to a file.
// The target directory is validated to be within staticDir.
func (p *Processor) saveFile(subDir, filename string, data []byte) (string, error) {
	safeFilename := filepath.Base(filename)
	if safeFilename == "." || safeFilename == ".." || safeFilename == "" {
		return "", fmt.Errorf("invalid filename")
	}

	cleanSubDir := filepath.Clean(subDir)
	if strings.Contains(cleanSubDir, "..") || filepath.IsAbs(cleanSubDir) {
		return "", fmt.Errorf("invalid subdirectory path")
	}

	absBase, err := filepath.Abs(p.staticDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}

	absTarget := filepath.Join(absBase, cleanSubDir)
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("path traversal detected")
	}

	if err := os.MkdirAll(absTarget, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	filePath := filepath.Join(absTarget, safeFilename)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return filePath, nil
}
