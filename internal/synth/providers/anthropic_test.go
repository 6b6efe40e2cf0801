package providers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amirkhadim36-creator/reelpress/internal/catalog"
)

func TestParseReviewResponse(t *testing.T) {
	payload, err := ParseReviewResponse([]byte(`{
		"title": "The Velvet Underworld of Neo-Noir",
		"preview": "A hook.",
		"content": "<h2>Narrative Architecture</h2><p>...</p>",
		"sentiment": 82,
		"category": "Thriller",
		"keywords": ["noir", "dystopia"],
		"tagline": "Nothing is what it seems.",
		"runtime": 117,
		"budget": 30000000,
		"revenue": 92000000,
		"status": "Released"
	}`))
	require.NoError(t, err)
	require.Equal(t, "The Velvet Underworld of Neo-Noir", payload.Title)
	require.Equal(t, 82, payload.Sentiment)
	require.Equal(t, []string{"noir", "dystopia"}, payload.Keywords)
	require.Equal(t, int64(30000000), payload.Budget)
}

func TestParseReviewResponseMissingFields(t *testing.T) {
	_, err := ParseReviewResponse([]byte(`{"title":"Headline","sentiment":50}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing required fields")
}

func TestParseReviewResponseSentimentRange(t *testing.T) {
	_, err := ParseReviewResponse([]byte(`{"title":"T","content":"C","category":"Drama","sentiment":140}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "out of range")
}

func TestParseReviewResponseMalformedJSON(t *testing.T) {
	_, err := ParseReviewResponse([]byte(`{"title": "Unterminated`))
	require.Error(t, err)
}

func TestBuildReviewPromptIncludesContext(t *testing.T) {
	prompt := BuildReviewPrompt(ReviewRequest{
		Title:     "Heat",
		CatalogID: 949,
		Rating:    7.9,
		Details: &catalog.Details{
			Budget:     60_000_000,
			GenreNames: []string{"Crime", "Drama"},
		},
	})

	require.Contains(t, prompt, `"Heat"`)
	require.Contains(t, prompt, "949")
	require.Contains(t, prompt, "7.9/10")
	require.Contains(t, prompt, "$60.0M")
	require.Contains(t, prompt, "Crime, Drama")
}

func TestBuildReviewPromptDefaults(t *testing.T) {
	prompt := BuildReviewPrompt(ReviewRequest{Title: "Obscure", CatalogID: 1, Rating: 7.0})

	require.Contains(t, prompt, "Undisclosed")
	require.Contains(t, prompt, "General Cinema")
}
