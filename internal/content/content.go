// Package content exposes the site's posts, taxonomies, and terms to the
// display-condition matcher and the admin pickers.
package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/featvid/featvid/internal/database"
)

const (
	StatusPublish = "publish"
	StatusDraft   = "draft"
)

// PostTypeDef mirrors a registered post type. Registration happens in code,
// not in the database, so the set is fixed per deployment.
type PostTypeDef struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Singular string `json:"singular"`
	Public   bool   `json:"public"`
}

var postTypes = []PostTypeDef{
	{Name: "post", Label: "Posts", Singular: "Post", Public: true},
	{Name: "page", Label: "Pages", Singular: "Page", Public: true},
	{Name: "product", Label: "Products", Singular: "Product", Public: true},
}

// PublicPostTypes returns the post types selectable as display-condition
// targets.
func PublicPostTypes() []PostTypeDef {
	out := make([]PostTypeDef, 0, len(postTypes))
	for _, pt := range postTypes {
		if pt.Public {
			out = append(out, pt)
		}
	}
	return out
}

// PostTypeSingular returns the singular label for a post type, falling back
// to the raw name for unregistered types.
func PostTypeSingular(name string) string {
	for _, pt := range postTypes {
		if pt.Name == name {
			return pt.Singular
		}
	}
	return name
}

// Post is the subset of a content entry the matcher and pickers need.
type Post struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	PostType string `json:"postType"`
	Status   string `json:"status"`
}

// Taxonomy describes a term grouping. category and post_tag are seeded by
// the migrations; others may be added per deployment.
type Taxonomy struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Singular string `json:"singular"`
	Public   bool   `json:"public"`
}

type Term struct {
	ID       int64  `json:"id"`
	Taxonomy string `json:"taxonomy"`
	Name     string `json:"name"`
}

var ErrNotFound = errors.New("content: not found")

// GetPost loads a single post. Returns ErrNotFound when the id does not
// exist.
func GetPost(ctx context.Context, db database.DBTX, id int64) (Post, error) {
	var p Post
	err := db.QueryRow(ctx,
		"SELECT id, title, post_type, status FROM posts WHERE id = $1", id,
	).Scan(&p.ID, &p.Title, &p.PostType, &p.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// PostExists reports whether a post row exists regardless of status.
func PostExists(ctx context.Context, db database.DBTX, id int64) (bool, error) {
	var one int
	err := db.QueryRow(ctx, "SELECT 1 FROM posts WHERE id = $1", id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("post exists: %w", err)
	}
	return true, nil
}

// PostTermIDs returns the term ids attached to a post, grouped by taxonomy.
func PostTermIDs(ctx context.Context, db database.DBTX, postID int64) (map[string][]int64, error) {
	rows, err := db.Query(ctx,
		`SELECT t.taxonomy, t.id
		 FROM post_terms pt
		 JOIN terms t ON t.id = pt.term_id
		 WHERE pt.post_id = $1
		 ORDER BY t.taxonomy, t.id`, postID)
	if err != nil {
		return nil, fmt.Errorf("post terms: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]int64)
	for rows.Next() {
		var taxonomy string
		var termID int64
		if err := rows.Scan(&taxonomy, &termID); err != nil {
			return nil, fmt.Errorf("scan post term: %w", err)
		}
		out[taxonomy] = append(out[taxonomy], termID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("post terms rows: %w", err)
	}
	return out, nil
}

// GetTerm loads a single term. Returns ErrNotFound when the id does not
// exist.
func GetTerm(ctx context.Context, db database.DBTX, id int64) (Term, error) {
	var t Term
	err := db.QueryRow(ctx,
		"SELECT id, taxonomy, name FROM terms WHERE id = $1", id,
	).Scan(&t.ID, &t.Taxonomy, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Term{}, ErrNotFound
	}
	if err != nil {
		return Term{}, fmt.Errorf("get term: %w", err)
	}
	return t, nil
}

// SearchPosts finds published posts of any public type whose title matches
// the search string, newest first.
func SearchPosts(ctx context.Context, db database.DBTX, search string, limit int) ([]Post, error) {
	rows, err := db.Query(ctx,
		`SELECT id, title, post_type, status FROM posts
		 WHERE status = $1 AND title ILIKE '%' || $2 || '%'
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3`,
		StatusPublish, search, limit)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	defer rows.Close()

	var out []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.PostType, &p.Status); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search posts rows: %w", err)
	}
	return out, nil
}

// ListPosts returns published posts of any public type for the targeting
// pickers, alphabetical by title.
func ListPosts(ctx context.Context, db database.DBTX, limit int) ([]Post, error) {
	rows, err := db.Query(ctx,
		`SELECT id, title, post_type, status FROM posts
		 WHERE status = $1
		 ORDER BY title, id
		 LIMIT $2`,
		StatusPublish, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var out []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.PostType, &p.Status); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts rows: %w", err)
	}
	return out, nil
}

// TermsByTaxonomy lists one taxonomy's terms for the targeting pickers,
// alphabetical by name.
func TermsByTaxonomy(ctx context.Context, db database.DBTX, taxonomy string, limit int) ([]Term, error) {
	rows, err := db.Query(ctx,
		`SELECT id, taxonomy, name FROM terms
		 WHERE taxonomy = $1
		 ORDER BY name, id
		 LIMIT $2`,
		taxonomy, limit)
	if err != nil {
		return nil, fmt.Errorf("terms by taxonomy: %w", err)
	}
	defer rows.Close()

	var out []Term
	for rows.Next() {
		var t Term
		if err := rows.Scan(&t.ID, &t.Taxonomy, &t.Name); err != nil {
			return nil, fmt.Errorf("scan term: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("terms by taxonomy rows: %w", err)
	}
	return out, nil
}

// SearchTerms finds terms across public taxonomies whose name matches the
// search string.
func SearchTerms(ctx context.Context, db database.DBTX, search string, limit int) ([]Term, error) {
	rows, err := db.Query(ctx,
		`SELECT t.id, t.taxonomy, t.name
		 FROM terms t
		 JOIN taxonomies tx ON tx.name = t.taxonomy
		 WHERE tx.public AND t.name ILIKE '%' || $1 || '%'
		 ORDER BY t.name, t.id
		 LIMIT $2`,
		search, limit)
	if err != nil {
		return nil, fmt.Errorf("search terms: %w", err)
	}
	defer rows.Close()

	var out []Term
	for rows.Next() {
		var t Term
		if err := rows.Scan(&t.ID, &t.Taxonomy, &t.Name); err != nil {
			return nil, fmt.Errorf("scan term: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search terms rows: %w", err)
	}
	return out, nil
}

// TaxonomySingular returns the singular label for a taxonomy name, falling
// back to the raw name when the taxonomy row is missing.
func TaxonomySingular(ctx context.Context, db database.DBTX, name string) (string, error) {
	var singular string
	err := db.QueryRow(ctx,
		"SELECT singular FROM taxonomies WHERE name = $1", name,
	).Scan(&singular)
	if errors.Is(err, pgx.ErrNoRows) {
		return name, nil
	}
	if err != nil {
		return "", fmt.Errorf("taxonomy singular: %w", err)
	}
	return singular, nil
}

// PublicTaxonomies lists the taxonomies selectable as display-condition
// targets.
func PublicTaxonomies(ctx context.Context, db database.DBTX) ([]Taxonomy, error) {
	rows, err := db.Query(ctx,
		"SELECT name, label, singular, public FROM taxonomies WHERE public ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list taxonomies: %w", err)
	}
	defer rows.Close()

	var out []Taxonomy
	for rows.Next() {
		var t Taxonomy
		if err := rows.Scan(&t.Name, &t.Label, &t.Singular, &t.Public); err != nil {
			return nil, fmt.Errorf("scan taxonomy: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list taxonomies rows: %w", err)
	}
	return out, nil
}
