package blog

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/gosimple/slug"
)

const wordsPerMinute = 300

// GenerateSlug converts a post title into a URL-friendly slug.
func GenerateSlug(title string) string {
	return slug.Make(title)
}

// CalculateReadingTime estimates reading minutes at 300 words per minute,
// never less than 1.
func CalculateReadingTime(content string) int {
	words := len(strings.Fields(content))
	minutes := int(math.Round(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// EmbeddingText combines the fields that feed a post's embedding vector.
func EmbeddingText(title, excerpt string) string {
	return title + " " + excerpt
}

// CosineSimilarity returns the cosine of the angle between two vectors, or 0
// when either vector is empty, zero-length or of mismatched dimension.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// EncodeVector and DecodeVector store embeddings as JSON text, which keeps
// sqlite free of vector extensions.
func EncodeVector(v []float64) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func DecodeVector(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	var v []float64
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// EncodeTags and DecodeTags store the tag list as JSON text.
func EncodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func DecodeTags(s string) []string {
	if s == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return []string{}
	}
	return tags
}
