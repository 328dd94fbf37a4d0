// Package tailor rewrites tables inside word-processing documents to match
// an externally supplied content schema, preserving every part and every
// formatting property it does not explicitly touch.
//
// A document is a zip container of XML parts. The package extracts the
// container to a per-operation scratch directory, mutates word/document.xml
// through a namespace-aware node tree, and rebuilds the container. All other
// parts round-trip byte for byte.
package tailor

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Tailor performs structure extraction and schema-driven rewriting. The zero
// value is not usable; construct with New.
type Tailor struct {
	scratchRoot string
	logger      zerolog.Logger
}

// Option configures a Tailor.
type Option func(*Tailor)

// WithLogger sets the logger used for structured warnings.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Tailor) {
		t.logger = logger
	}
}

// WithScratchRoot sets the directory under which per-operation scratch
// directories are created. Defaults to the system temp directory.
func WithScratchRoot(root string) Option {
	return func(t *Tailor) {
		t.scratchRoot = root
	}
}

// New creates a Tailor.
func New(opts ...Option) *Tailor {
	t := &Tailor{
		scratchRoot: os.TempDir(),
		logger:      log.Logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ExtractStructure opens the container and returns a snapshot of its tables
// and styles. The document is not modified.
func (t *Tailor) ExtractStructure(containerPath string) (*StructureSnapshot, error) {
	scratch, cleanup, err := t.newScratchDir()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := Extract(containerPath, scratch); err != nil {
		return nil, err
	}

	document, err := parsePart(scratch, documentPart)
	if err != nil {
		return nil, err
	}
	styles, err := parsePart(scratch, stylesPart)
	if err != nil {
		return nil, err
	}

	return ExtractStructure(document, styles), nil
}

// RewriteDocument rewrites the container at containerPath against the schema
// and writes the result to outputPath. The source container is never
// modified. On failure a partially written output may remain at outputPath;
// discarding it is the caller's responsibility.
func (t *Tailor) RewriteDocument(containerPath string, schema *ContentSchema, outputPath string) error {
	if err := schema.Validate(); err != nil {
		return err
	}

	scratch, cleanup, err := t.newScratchDir()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := Extract(containerPath, scratch); err != nil {
		return err
	}

	document, err := parsePart(scratch, documentPart)
	if err != nil {
		return err
	}

	sections := schema.Sections()
	matched := make([]int, len(sections))

	for tableIdx, table := range document.FindAll("w:tbl") {
		text := searchText(table)
		idx := matchSectionIndex(text, sections)
		if idx < 0 {
			t.logger.Warn().
				Int("table", tableIdx).
				Msg("no section matches table, leaving it untouched")
			continue
		}
		matched[idx]++
		if matched[idx] > 1 {
			t.logger.Warn().
				Int("table", tableIdx).
				Str("section", sections[idx].Title).
				Msg("section matches more than one table")
		}
		if err := rewriteTable(table, &sections[idx], tableIdx, t.logger); err != nil {
			return err
		}
	}

	for i, count := range matched {
		if count == 0 {
			t.logger.Warn().
				Str("section", sections[i].Title).
				Msg("section matched no table")
		}
	}

	serialized, err := document.Serialize()
	if err != nil {
		return NewXMLError(documentPart, err)
	}
	partPath := filepath.Join(scratch, filepath.FromSlash(documentPart))
	if err := os.WriteFile(partPath, serialized, 0o644); err != nil {
		return NewArchiveError("write", documentPart, err)
	}

	return Rebuild(scratch, outputPath)
}

// newScratchDir creates an exclusively owned scratch directory. Each call
// gets a fresh uuid-named directory, so concurrent operations never share
// extracted parts.
func (t *Tailor) newScratchDir() (string, func(), error) {
	scratch := filepath.Join(t.scratchRoot, "tailor-"+uuid.NewString())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return "", nil, NewArchiveError("scratch", scratch, err)
	}
	cleanup := func() {
		if err := os.RemoveAll(scratch); err != nil {
			t.logger.Warn().Str("dir", scratch).Err(err).Msg("failed to remove scratch directory")
		}
	}
	return scratch, cleanup, nil
}

// parsePart reads and parses one extracted XML part.
func parsePart(scratch, part string) (*Node, error) {
	data, err := os.ReadFile(filepath.Join(scratch, filepath.FromSlash(part)))
	if err != nil {
		return nil, NewArchiveError("read", part, err)
	}
	return ParseXML(part, data)
}
