package validate

import "fmt"

// Text field length limits, shared by the backend and the admin UI.
const (
	MaxTitleLength       = 500
	MaxEmbedURLLength    = 2000
	MaxSearchTermLength  = 200
	MaxPostTypeLength    = 50
	MaxTaxonomyLength    = 50
	MaxOptionValueLength = 10 * 1024
)

func checkLen(value string, max int, field string) string {
	if len(value) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, max)
	}
	return ""
}

func Title(s string) string      { return checkLen(s, MaxTitleLength, "title") }
func EmbedURL(s string) string   { return checkLen(s, MaxEmbedURLLength, "embed URL") }
func SearchTerm(s string) string { return checkLen(s, MaxSearchTermLength, "search term") }
func PostType(s string) string   { return checkLen(s, MaxPostTypeLength, "post type") }
func Taxonomy(s string) string   { return checkLen(s, MaxTaxonomyLength, "taxonomy") }

// FieldLimits returns a map of field names to max lengths for the /api/limits endpoint.
func FieldLimits() map[string]int {
	return map[string]int{
		"title":      MaxTitleLength,
		"embedUrl":   MaxEmbedURLLength,
		"searchTerm": MaxSearchTermLength,
		"postType":   MaxPostTypeLength,
		"taxonomy":   MaxTaxonomyLength,
	}
}
