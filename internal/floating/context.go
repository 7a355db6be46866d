package floating

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/featvid/featvid/internal/content"
	"github.com/featvid/featvid/internal/database"
)

const (
	ViewSingular        = "singular"
	ViewPostTypeArchive = "post_type_archive"
	ViewTaxonomyArchive = "taxonomy_archive"
)

// Context captures the page view the display conditions are evaluated
// against: which object is queried and what kind of view it is.
type Context struct {
	View            string
	QueriedObjectID int64

	// Set on singular views and post-type archives.
	PostType string

	// Set on taxonomy archives. TermIDs holds the archive's term id.
	Taxonomy string
	TermIDs  []int64

	// Term ids of the queried object per taxonomy, singular views only.
	ObjectTerms map[string][]int64
}

func (c Context) IsSingular(types []string) bool {
	if c.View != ViewSingular {
		return false
	}
	return containsString(types, c.PostType)
}

func (c Context) IsPostTypeArchive(types []string) bool {
	if c.View != ViewPostTypeArchive {
		return false
	}
	return containsString(types, c.PostType)
}

func (c Context) IsTaxonomyArchive(taxonomy string, termIDs []int64) bool {
	if c.View != ViewTaxonomyArchive || c.Taxonomy != taxonomy {
		return false
	}
	return intersects(c.TermIDs, termIDs)
}

// ObjectTermIDs returns the queried object's term ids for one taxonomy.
func (c Context) ObjectTermIDs(taxonomy string) []int64 {
	if c.ObjectTerms == nil {
		return nil
	}
	return c.ObjectTerms[taxonomy]
}

// ContextFromQuery builds a view context from the frontend request
// parameters. Singular views load the object's type and terms so taxonomy
// conditions can be evaluated.
func ContextFromQuery(ctx context.Context, db database.DBTX, params url.Values) (Context, error) {
	view := params.Get("view")
	switch view {
	case ViewSingular:
		objectID, err := strconv.ParseInt(params.Get("object"), 10, 64)
		if err != nil {
			return Context{}, fmt.Errorf("invalid object id")
		}
		post, err := content.GetPost(ctx, db, objectID)
		if err != nil {
			return Context{}, err
		}
		terms, err := content.PostTermIDs(ctx, db, objectID)
		if err != nil {
			return Context{}, err
		}
		return Context{
			View:            ViewSingular,
			QueriedObjectID: objectID,
			PostType:        post.PostType,
			ObjectTerms:     terms,
		}, nil

	case ViewPostTypeArchive:
		postType := params.Get("postType")
		if postType == "" {
			return Context{}, fmt.Errorf("postType is required for post type archives")
		}
		return Context{View: ViewPostTypeArchive, PostType: postType}, nil

	case ViewTaxonomyArchive:
		taxonomy := params.Get("taxonomy")
		if taxonomy == "" {
			return Context{}, fmt.Errorf("taxonomy is required for taxonomy archives")
		}
		termIDs, err := parseTermIDs(params.Get("terms"))
		if err != nil {
			return Context{}, err
		}
		c := Context{View: ViewTaxonomyArchive, Taxonomy: taxonomy, TermIDs: termIDs}
		// The archive's term is the queried object, so page lists can
		// target term archives too.
		if len(termIDs) > 0 {
			c.QueriedObjectID = termIDs[0]
		}
		return c, nil

	default:
		return Context{}, fmt.Errorf("unknown view %q", view)
	}
}

func parseTermIDs(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid term id %q", part)
		}
		out = append(out, id)
	}
	return out, nil
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsID(haystack []int64, needle int64) bool {
	for _, id := range haystack {
		if id == needle {
			return true
		}
	}
	return false
}

func intersects(a, b []int64) bool {
	for _, id := range a {
		if containsID(b, id) {
			return true
		}
	}
	return false
}
