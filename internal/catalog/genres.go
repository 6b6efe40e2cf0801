package catalog

// GenreAll is the filter value that means "no genre restriction".
const GenreAll = "All"

// genreIDs maps the provider's numeric genre ids to display names.
var genreIDs = map[int64]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Sci-Fi",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// GenreID returns the provider id for a genre name, or 0 if unknown.
func GenreID(name string) int64 {
	for id, n := range genreIDs {
		if n == name {
			return id
		}
	}
	return 0
}

// GenreName returns the display name for a provider genre id.
func GenreName(id int64) string {
	return genreIDs[id]
}

// Genres returns the known genre names in a stable order.
func Genres() []string {
	names := []string{
		"Action", "Adventure", "Animation", "Comedy", "Crime",
		"Documentary", "Drama", "Family", "Fantasy", "History",
		"Horror", "Music", "Mystery", "Romance", "Sci-Fi",
		"Thriller", "War", "Western",
	}
	return names
}
