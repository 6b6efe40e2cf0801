package providers

import (
	"fmt"
	"strings"

	"github.com/amirkhadim36-creator/reelpress/internal/catalog"
)

// ReviewRequest carries the title and contextual metadata for one
// review generation.
type ReviewRequest struct {
	Title     string
	CatalogID int64
	Rating    float64
	Details   *catalog.Details
}

// ReviewPayload is the structured post returned by a provider.
// Title, Preview, Content, Sentiment and Category are required;
// the rest is best-effort.
type ReviewPayload struct {
	Title     string   `json:"title"`
	Preview   string   `json:"preview"`
	Content   string   `json:"content"`
	Sentiment int      `json:"sentiment"`
	Category  string   `json:"category"`
	Keywords  []string `json:"keywords,omitempty"`
	Tagline   string   `json:"tagline,omitempty"`
	Runtime   int      `json:"runtime,omitempty"`
	Budget    int64    `json:"budget,omitempty"`
	Revenue   int64    `json:"revenue,omitempty"`
	Status    string   `json:"status,omitempty"`
}

// BuildReviewPrompt constructs the generation prompt for one title
func BuildReviewPrompt(req ReviewRequest) string {
	budgetStr := "Undisclosed"
	genreStr := "General Cinema"
	if req.Details != nil {
		if req.Details.Budget > 0 {
			budgetStr = fmt.Sprintf("$%.1fM", float64(req.Details.Budget)/1000000)
		}
		if len(req.Details.GenreNames) > 0 {
			genreStr = strings.Join(req.Details.GenreNames, ", ")
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Perform a high-end cinematic analysis of the movie %q (catalog ID: %d).\n", req.Title, req.CatalogID)
	fmt.Fprintf(&sb, "Context: it has a rating of %.1f/10, budget of %s, and genres: %s.\n\n", req.Rating, budgetStr, genreStr)
	sb.WriteString("Respond with a single JSON object with these fields:\n")
	sb.WriteString(`1. "title": a dramatic headline.` + "\n")
	sb.WriteString(`2. "preview": a 1-sentence captivating hook.` + "\n")
	sb.WriteString(`3. "content": a detailed review in HTML. Use <h2> for sections like "Narrative Architecture", "Visual Language", "Critical Verdict". Use <strong> for emphasis.` + "\n")
	sb.WriteString(`4. "sentiment": a number (0-100) reflecting the critical reception.` + "\n")
	sb.WriteString(`5. "category": the primary genre from the provided list.` + "\n")
	sb.WriteString(`6. "keywords": 5 relevant technical or thematic tags.` + "\n")
	sb.WriteString(`7. "tagline": a short catchy movie tagline.` + "\n")
	sb.WriteString(`8. "runtime": the movie runtime in minutes.` + "\n")
	sb.WriteString(`9. "budget": total budget number.` + "\n")
	sb.WriteString(`10. "revenue": total revenue number.` + "\n")
	sb.WriteString(`11. "status": production status.` + "\n\n")
	sb.WriteString("Output only the JSON object, no surrounding prose.")

	return sb.String()
}
