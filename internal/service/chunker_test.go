package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dronemind-ai/dronemind/internal/domain"
)

// buildSpecText produces non-repeating space-separated text so overlap
// checks cannot match by coincidence.
func buildSpecText(words int) string {
	var sb strings.Builder
	for i := 0; i < words; i++ {
		sb.WriteString(fmt.Sprintf("param-%04d ", i))
	}
	return strings.TrimRight(sb.String(), " ")
}

func TestSplit_EmptyInput(t *testing.T) {
	chunks, err := Split("", DefaultSplitConfig())
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestSplit_ShortInputSingleChunk(t *testing.T) {
	text := "Max Flight Time: 45 minutes"
	chunks, err := Split(text, DefaultSplitConfig())
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplit_ExactlyMaxSizeSingleChunk(t *testing.T) {
	cfg := DefaultSplitConfig()
	text := strings.Repeat("a", cfg.MaxSize)
	chunks, err := Split(text, cfg)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplit_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  SplitConfig
	}{
		{"zero max size", SplitConfig{MaxSize: 0, Overlap: 0}},
		{"negative overlap", SplitConfig{MaxSize: 512, Overlap: -1}},
		{"overlap equals max size", SplitConfig{MaxSize: 100, Overlap: 100}},
		{"overlap exceeds max size", SplitConfig{MaxSize: 100, Overlap: 150}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split("some text that is long enough", tt.cfg)
			assert.ErrorIs(t, err, domain.ErrInvalidChunkConfig)
		})
	}
}

func TestSplit_ChunksNeverExceedMaxSize(t *testing.T) {
	cfg := DefaultSplitConfig()
	text := buildSpecText(600)
	require.Greater(t, len(text), cfg.MaxSize)

	chunks, err := Split(text, cfg)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), cfg.MaxSize, "chunk %d too long", i)
		assert.NotEmpty(t, chunk, "chunk %d empty", i)
	}
}

func TestSplit_ConsecutiveChunksShareOverlap(t *testing.T) {
	cfg := DefaultSplitConfig()
	text := buildSpecText(600)

	chunks, err := Split(text, cfg)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		require.GreaterOrEqual(t, len(prev), cfg.Overlap)
		tail := string(prev[len(prev)-cfg.Overlap:])
		assert.True(t, strings.HasPrefix(chunks[i], tail),
			"chunk %d does not start with the previous chunk's tail", i)
	}
}

func TestSplit_ReconstructsOriginalText(t *testing.T) {
	cfg := DefaultSplitConfig()
	text := buildSpecText(600)

	chunks, err := Split(text, cfg)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	var sb strings.Builder
	sb.WriteString(chunks[0])
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		tail := string(prev[len(prev)-cfg.Overlap:])
		require.True(t, strings.HasPrefix(chunks[i], tail))
		sb.WriteString(chunks[i][len(tail):])
	}
	assert.Equal(t, text, sb.String())
}

func TestSplit_PrefersParagraphBoundaries(t *testing.T) {
	cfg := SplitConfig{MaxSize: 60, Overlap: 10, Separators: []string{"\n\n", "\n", " ", ""}}
	text := "First paragraph of the spec sheet.\n\nSecond paragraph with more details.\n\nThird paragraph closing it out."

	chunks, err := Split(text, cfg)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// Paragraph separators survive splitting intact, so no chunk starts
	// mid-word at a paragraph boundary.
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), cfg.MaxSize)
	}
}

func TestSplit_FallsBackToCharacterSplitting(t *testing.T) {
	// No separators present at all: one long unbroken token.
	cfg := SplitConfig{MaxSize: 50, Overlap: 10, Separators: []string{"\n\n", "\n", " ", ""}}
	text := strings.Repeat("x", 200)

	chunks, err := Split(text, cfg)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), cfg.MaxSize)
	}
}

func TestSplit_ZeroOverlap(t *testing.T) {
	cfg := SplitConfig{MaxSize: 50, Overlap: 0, Separators: []string{" "}}
	text := buildSpecText(40)

	chunks, err := Split(text, cfg)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// With no overlap the chunks concatenate back to the original text.
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplit_MultibyteRunes(t *testing.T) {
	cfg := SplitConfig{MaxSize: 50, Overlap: 10, Separators: []string{" ", ""}}
	text := strings.Repeat("悬停精度 ±0.1米 图传距离 15公里 ", 20)

	chunks, err := Split(text, cfg)
	require.NoError(t, err)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), cfg.MaxSize, "chunk %d too long in runes", i)
	}
}
