package specstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"designdesk/internal/domain"
	"designdesk/internal/infra"
)

type memWriter struct {
	byCategory map[domain.Category][]string
	bySource   map[string]int
}

func newMemWriter() *memWriter {
	return &memWriter{
		byCategory: map[domain.Category][]string{},
		bySource:   map[string]int{},
	}
}

func (m *memWriter) Upsert(_ context.Context, category domain.Category, source string, chunks []string) error {
	m.byCategory[category] = append(m.byCategory[category], chunks...)
	m.bySource[source] = len(chunks)
	return nil
}

func discardLogger() *infra.Logger {
	logger := infra.Logger(zerolog.New(io.Discard))
	return &logger
}

func TestCategoryFromFilename(t *testing.T) {
	cases := map[string]domain.Category{
		"banner.md":            domain.CategoryBanner,
		"poster_guidelines.md": domain.CategoryPoster,
		"detail_page.md":       domain.CategoryDetailPage,
		"detail-specs.md":      domain.CategoryDetailPage,
		"icon-set.md":          domain.CategoryIcon,
		"brand_voice.md":       domain.CategoryOther,
	}
	for name, want := range cases {
		require.Equal(t, want, CategoryFromFilename(name), name)
	}
}

func TestChunkMarkdownSplitsOnHeadings(t *testing.T) {
	md := "# Banner 规范\n宽高比 8:3。\n\n## 文案\n不超过12字。\n\n## 配色\n主色取自品牌色板。\n"
	chunks := ChunkMarkdown(md)
	require.Len(t, chunks, 3)
	require.True(t, strings.HasPrefix(chunks[0], "# Banner 规范"))
	require.Contains(t, chunks[1], "不超过12字")
	require.Contains(t, chunks[2], "配色")
}

func TestChunkMarkdownSplitsOversizedSections(t *testing.T) {
	para := strings.Repeat("设计规范细则。", 50) // well past the chunk bound
	md := "# 长章节\n" + para + "\n\n" + para + "\n"
	chunks := ChunkMarkdown(md)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		require.NotEmpty(t, strings.TrimSpace(chunk))
	}
}

func TestChunkMarkdownEmptyInput(t *testing.T) {
	require.Empty(t, ChunkMarkdown(""))
	require.Empty(t, ChunkMarkdown("\n\n   \n"))
}

func TestIngestDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "banner.md"),
		[]byte("# Banner\n宽高比 8:3。\n\n## 文案\n不超过12字。\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "poster.md"),
		[]byte("# 海报\n竖版优先。\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"),
		[]byte("not markdown"), 0o644))

	sink := newMemWriter()
	in := NewIngestor(sink, discardLogger())

	n, err := in.IngestDir(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Len(t, sink.byCategory[domain.CategoryBanner], 2)
	require.Len(t, sink.byCategory[domain.CategoryPoster], 1)
	require.Equal(t, 2, sink.bySource["banner.md"])
}

func TestIngestFileEmptySkipped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.md")
	require.NoError(t, os.WriteFile(path, []byte("   \n"), 0o644))

	in := NewIngestor(newMemWriter(), discardLogger())
	require.Error(t, in.IngestFile(context.Background(), path))
}
