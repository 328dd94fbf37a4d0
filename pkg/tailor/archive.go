package tailor

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Required parts of a word-processing container. A container missing either
// is rejected before any extraction happens.
const (
	documentPart = "word/document.xml"
	stylesPart   = "word/styles.xml"
)

var requiredParts = []string{documentPart, stylesPart}

// Extract opens the zip container at containerPath and materializes every
// part under destDir, preserving the container-relative paths. The container
// must hold the required word-processing parts.
func Extract(containerPath, destDir string) error {
	reader, err := zip.OpenReader(containerPath)
	if err != nil {
		return NewArchiveError("open", containerPath, err)
	}
	defer reader.Close()

	parts := make(map[string]bool, len(reader.File))
	for _, file := range reader.File {
		parts[file.Name] = true
	}
	for _, part := range requiredParts {
		if !parts[part] {
			return NewArchiveError("open", containerPath,
				fmt.Errorf("missing required part %s", part))
		}
	}

	for _, file := range reader.File {
		if err := extractPart(file, destDir); err != nil {
			return err
		}
	}
	return nil
}

// extractPart writes a single container entry beneath destDir. Entry names
// that would escape destDir are rejected.
func extractPart(file *zip.File, destDir string) error {
	target := filepath.Join(destDir, filepath.FromSlash(file.Name))
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return NewArchiveError("extract", file.Name, errors.New("entry escapes destination directory"))
	}

	if file.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return NewArchiveError("extract", file.Name, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return NewArchiveError("extract", file.Name, err)
	}

	src, err := file.Open()
	if err != nil {
		return NewArchiveError("extract", file.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return NewArchiveError("extract", file.Name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return NewArchiveError("extract", file.Name, err)
	}
	if err := dst.Close(); err != nil {
		return NewArchiveError("extract", file.Name, err)
	}
	return nil
}

// Rebuild walks srcDir recursively and writes every file into a fresh zip
// container at outputPath, with entry names relative to srcDir. Untouched
// parts round-trip byte for byte.
func Rebuild(srcDir, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return NewArchiveError("rebuild", outputPath, err)
	}

	writer := zip.NewWriter(out)

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		entry, err := writer.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(entry, src)
		return err
	})
	if walkErr != nil {
		writer.Close()
		out.Close()
		return NewArchiveError("rebuild", outputPath, walkErr)
	}

	if err := writer.Close(); err != nil {
		out.Close()
		return NewArchiveError("rebuild", outputPath, err)
	}
	if err := out.Close(); err != nil {
		return NewArchiveError("rebuild", outputPath, err)
	}
	return nil
}
