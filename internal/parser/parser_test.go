package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textbook-rag/internal/config"
	"textbook-rag/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{RAG: config.RAGConfig{ChunkSize: 40, ChunkOverlap: 10}}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse_Text(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt",
		"The spatial Jacobian maps joint velocities to end-effector twists.")

	chunks, err := Parse(path, testConfig())
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].PageNumber)
	assert.Equal(t, 1, chunks[0].ChunkID)
	assert.Equal(t, "The spatial Jacobian maps joint velociti", chunks[0].Content)
}

func TestParse_EmptyText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.txt", "  \n\t ")

	chunks, err := Parse(path, testConfig())
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestParse_Markdown(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "setup.md", `# CoppeliaSim Setup

Download the simulator and unpack it.

- Pull the embedding model
- Start the runtime

`+"```\nollama pull nomic-embed-text\n```\n")

	chunks, err := Parse(path, testConfig())
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	text := reconstruct(chunkContents(chunks), 10)
	assert.Contains(t, text, "CoppeliaSim Setup")
	assert.Contains(t, text, "Download the simulator and unpack it.")
	assert.Contains(t, text, "ollama pull nomic-embed-text")
	assert.NotContains(t, text, "#")
	assert.NotContains(t, text, "```")
}

func TestParse_CSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scene.csv", "object,x,y,z\ncube,0.1,0.2,0.0\ncylinder,0.4,0.1,0.0\n")

	chunks, err := Parse(path, testConfig())
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	text := reconstruct(chunkContents(chunks), 10)
	assert.Contains(t, text, "object\tx\ty\tz")
	assert.Contains(t, text, "cube\t0.1\t0.2\t0.0")
}

func TestParse_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scene.ttt", "binary scene data")

	_, err := Parse(path, testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}

func TestParse_NilConfigUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", strings.Repeat("kinematics ", 100))

	chunks, err := Parse(path, nil)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.LessOrEqual(t, len([]rune(chunks[0].Content)), 500)
}

func TestFindDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "MRlib.pdf", "%PDF-1.4 fake")
	writeFile(t, dir, "guide.md", "# guide")
	writeFile(t, dir, "scene.csv", "a,b")
	writeFile(t, dir, "scene.ttt", "simulator scene")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "chroma_db"), 0o755))
	writeFile(t, filepath.Join(dir, "chroma_db"), "leftover.txt", "should be skipped")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "week1"), 0o755))
	writeFile(t, filepath.Join(dir, "week1"), "notes.txt", "so3 and se3")

	files, err := FindDocuments(dir, "./chroma_db")
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		rel, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		names = append(names, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"MRlib.pdf", "guide.md", "scene.csv", "week1/notes.txt"}, names)
}

func TestExtractMarkdownText_LineBreaks(t *testing.T) {
	text := extractMarkdownText([]byte("first paragraph\n\nsecond paragraph"))
	assert.Contains(t, text, "first paragraph")
	assert.Contains(t, text, "second paragraph")
	assert.NotEqual(t, "first paragraphsecond paragraph", text)
}

func chunkContents(chunks []models.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Content
	}
	return out
}
