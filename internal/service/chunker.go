package service

import (
	"strings"

	"github.com/dronemind-ai/dronemind/internal/domain"
)

// SplitConfig controls recursive character splitting of scraped page text.
type SplitConfig struct {
	// MaxSize is the maximum chunk length in characters (runes).
	MaxSize int
	// Overlap is the number of trailing characters each chunk shares with
	// the next one.
	Overlap int
	// Separators are tried in priority order; the empty string is the
	// final fallback and splits at arbitrary character boundaries.
	Separators []string
}

// DefaultSplitConfig matches the ingestion defaults for vendor spec pages.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{
		MaxSize:    512,
		Overlap:    100,
		Separators: []string{"\n\n", "\n", " ", ""},
	}
}

// Split breaks text into overlapping chunks of at most cfg.MaxSize
// characters. Pieces are produced by splitting on the first separator
// that applies, recursively re-splitting oversized pieces with the next
// separator, then merged back into chunks with a sliding window so each
// chunk after the first begins cfg.Overlap characters before the end of
// the previous one.
//
// Empty input yields nil. Input no longer than MaxSize yields a single
// chunk equal to the input. Overlap >= MaxSize is a configuration error.
func Split(text string, cfg SplitConfig) ([]string, error) {
	if cfg.MaxSize <= 0 {
		return nil, domain.ErrInvalidChunkConfig
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.MaxSize {
		return nil, domain.ErrInvalidChunkConfig
	}
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	if len(runes) <= cfg.MaxSize {
		return []string{text}, nil
	}

	separators := cfg.Separators
	if len(separators) == 0 {
		separators = DefaultSplitConfig().Separators
	}

	// Pieces are capped at MaxSize-Overlap so that re-seeding a chunk
	// with the previous chunk's tail can never push it past MaxSize.
	budget := cfg.MaxSize - cfg.Overlap
	pieces := splitRecursive(text, separators, budget)
	return mergePieces(pieces, cfg.MaxSize, cfg.Overlap), nil
}

func splitRecursive(text string, separators []string, budget int) []string {
	if len([]rune(text)) <= budget {
		return []string{text}
	}
	if len(separators) == 0 {
		return splitEvery(text, budget)
	}

	sep := separators[0]
	rest := separators[1:]
	if sep == "" {
		return splitEvery(text, budget)
	}

	parts := strings.SplitAfter(text, sep)
	if len(parts) == 1 {
		// Separator not present, try the next one.
		return splitRecursive(text, rest, budget)
	}

	pieces := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if len([]rune(part)) <= budget {
			pieces = append(pieces, part)
			continue
		}
		pieces = append(pieces, splitRecursive(part, rest, budget)...)
	}
	return pieces
}

func splitEvery(text string, size int) []string {
	runes := []rune(text)
	pieces := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}

func mergePieces(pieces []string, maxSize, overlap int) []string {
	var chunks []string
	var current []rune

	for _, piece := range pieces {
		pr := []rune(piece)
		if len(current) > 0 && len(current)+len(pr) > maxSize {
			chunks = append(chunks, string(current))
			if overlap > 0 && len(current) >= overlap {
				tail := current[len(current)-overlap:]
				current = append([]rune(nil), tail...)
			} else {
				current = current[:0]
			}
		}
		current = append(current, pr...)
	}
	if len(current) > 0 {
		chunks = append(chunks, string(current))
	}

	return chunks
}
