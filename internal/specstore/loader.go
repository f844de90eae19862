package specstore

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"designdesk/internal/domain"
	"designdesk/internal/infra"
)

// maxChunkChars bounds one guidance chunk; sections longer than this are
// split at the nearest blank line.
const maxChunkChars = 500

// Ingestor loads markdown guideline files into a guidance store. Each file
// covers one category (taken from the filename) and is chunked on headings so
// search hits return focused snippets rather than whole documents.
type Ingestor struct {
	store  GuidanceWriter
	logger *infra.Logger
}

// GuidanceWriter is the sink the ingestor writes chunks to.
type GuidanceWriter interface {
	Upsert(ctx context.Context, category domain.Category, source string, chunks []string) error
}

// NewIngestor constructs an Ingestor writing to the given store.
func NewIngestor(store GuidanceWriter, logger *infra.Logger) *Ingestor {
	return &Ingestor{store: store, logger: logger}
}

// IngestDir walks dir for markdown files and loads each one. Files that fail
// to load are skipped with a warning; the walk continues.
func (in *Ingestor) IngestDir(ctx context.Context, dir string) (int, error) {
	files := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		if err := in.IngestFile(ctx, path); err != nil {
			in.logger.Warn().Err(err).Str("file", path).Msg("specstore: skipping file")
			return nil
		}
		files++
		return nil
	})
	if err != nil {
		return files, fmt.Errorf("walk %s: %w", dir, err)
	}
	return files, nil
}

// IngestFile chunks one markdown file and replaces its chunks in the store.
func (in *Ingestor) IngestFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	chunks := ChunkMarkdown(string(data))
	if len(chunks) == 0 {
		return fmt.Errorf("no content in %s", path)
	}
	category := CategoryFromFilename(path)
	source := filepath.Base(path)
	if err := in.store.Upsert(ctx, category, source, chunks); err != nil {
		return err
	}
	in.logger.Info().
		Str("file", source).
		Str("category", string(category)).
		Int("chunks", len(chunks)).
		Msg("specstore: file ingested")
	return nil
}

// CategoryFromFilename maps a guideline filename onto a request category.
// Unrecognized names fall into the catch-all category.
func CategoryFromFilename(path string) domain.Category {
	name := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	for _, c := range domain.KnownCategories {
		if strings.Contains(name, string(c)) {
			return c
		}
	}
	switch {
	case strings.Contains(name, "detail"):
		return domain.CategoryDetailPage
	default:
		return domain.CategoryOther
	}
}

// ChunkMarkdown splits markdown into heading-delimited chunks. Each heading
// starts a new chunk; oversized sections are further split at blank lines so
// no chunk exceeds maxChunkChars by more than one paragraph.
func ChunkMarkdown(content string) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		text := strings.TrimSpace(current.String())
		if text != "" {
			chunks = append(chunks, text)
		}
		current.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		atHeading := strings.HasPrefix(strings.TrimSpace(line), "#")
		oversized := current.Len() >= maxChunkChars && strings.TrimSpace(line) == ""
		if atHeading || oversized {
			flush()
			if oversized {
				continue
			}
		}
		current.WriteString(line)
		current.WriteByte('\n')
	}
	flush()
	return chunks
}
