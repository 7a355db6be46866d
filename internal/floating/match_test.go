package floating

import "testing"

func singularContext(objectID int64, postType string, terms map[string][]int64) Context {
	return Context{
		View:            ViewSingular,
		QueriedObjectID: objectID,
		PostType:        postType,
		ObjectTerms:     terms,
	}
}

func TestMatches_Sitewide(t *testing.T) {
	rule := Rule{DisplayType: DisplaySitewide}

	contexts := []Context{
		singularContext(1, "post", nil),
		{View: ViewPostTypeArchive, PostType: "product"},
		{View: ViewTaxonomyArchive, Taxonomy: "category", TermIDs: []int64{9}},
	}
	for _, ctx := range contexts {
		if !Matches(rule, ctx) {
			t.Fatalf("expected sitewide to match %+v", ctx)
		}
	}
}

func TestMatches_SpecificPages(t *testing.T) {
	rule := Rule{DisplayType: DisplaySpecificPages, PageIDs: []int64{10, 20}}

	if !Matches(rule, singularContext(10, "page", nil)) {
		t.Fatal("expected listed page to match")
	}
	if Matches(rule, singularContext(11, "page", nil)) {
		t.Fatal("expected unlisted page not to match")
	}
	if !Matches(rule, Context{View: ViewTaxonomyArchive, QueriedObjectID: 20}) {
		t.Fatal("expected a listed queried object to match on archive views too")
	}
	if Matches(rule, Context{View: ViewPostTypeArchive, PostType: "page", QueriedObjectID: 42}) {
		t.Fatal("expected an unlisted queried object not to match on archives")
	}
}

func TestMatches_SpecificPagesEmptyListNeverMatches(t *testing.T) {
	rule := Rule{DisplayType: DisplaySpecificPages}
	if Matches(rule, singularContext(10, "page", nil)) {
		t.Fatal("expected empty page list to match nothing")
	}
}

func TestMatches_PostTypes(t *testing.T) {
	rule := Rule{DisplayType: DisplayPostTypes, TargetPostTypes: []string{"product"}}

	if !Matches(rule, singularContext(5, "product", nil)) {
		t.Fatal("expected singular product to match")
	}
	if !Matches(rule, Context{View: ViewPostTypeArchive, PostType: "product"}) {
		t.Fatal("expected product archive to match")
	}
	if Matches(rule, singularContext(5, "post", nil)) {
		t.Fatal("expected other post types not to match")
	}
	if Matches(rule, Context{View: ViewPostTypeArchive, PostType: "post"}) {
		t.Fatal("expected other archives not to match")
	}
}

func TestMatches_PostTypesEmptyListNeverMatches(t *testing.T) {
	rule := Rule{DisplayType: DisplayPostTypes}
	if Matches(rule, singularContext(5, "post", nil)) {
		t.Fatal("expected empty post type list to match nothing")
	}
}

func TestMatches_TaxonomyArchive(t *testing.T) {
	rule := Rule{DisplayType: DisplayTaxonomies, TargetTaxonomies: []TaxonomyTarget{
		{Taxonomy: "genre", Terms: []int64{7, 8}},
	}}

	if !Matches(rule, Context{View: ViewTaxonomyArchive, Taxonomy: "genre", TermIDs: []int64{8}}) {
		t.Fatal("expected targeted term archive to match")
	}
	if Matches(rule, Context{View: ViewTaxonomyArchive, Taxonomy: "genre", TermIDs: []int64{9}}) {
		t.Fatal("expected untargeted term archive not to match")
	}
	if Matches(rule, Context{View: ViewTaxonomyArchive, Taxonomy: "category", TermIDs: []int64{8}}) {
		t.Fatal("expected other taxonomies not to match")
	}
}

func TestMatches_TaxonomyCategoryAndTagArchives(t *testing.T) {
	rule := Rule{DisplayType: DisplayTaxonomies, TargetTaxonomies: []TaxonomyTarget{
		{Taxonomy: "category", Terms: []int64{3}},
		{Taxonomy: "post_tag", Terms: []int64{4}},
	}}

	if !Matches(rule, Context{View: ViewTaxonomyArchive, Taxonomy: "category", TermIDs: []int64{3}}) {
		t.Fatal("expected category archive to match")
	}
	if !Matches(rule, Context{View: ViewTaxonomyArchive, Taxonomy: "post_tag", TermIDs: []int64{4}}) {
		t.Fatal("expected tag archive to match")
	}
}

func TestMatches_TaxonomyOnSingularIntersectsObjectTerms(t *testing.T) {
	rule := Rule{DisplayType: DisplayTaxonomies, TargetTaxonomies: []TaxonomyTarget{
		{Taxonomy: "category", Terms: []int64{3, 4}},
	}}

	matching := singularContext(1, "post", map[string][]int64{"category": {4, 9}})
	if !Matches(rule, matching) {
		t.Fatal("expected post with a targeted term to match")
	}

	nonMatching := singularContext(1, "post", map[string][]int64{"category": {9}})
	if Matches(rule, nonMatching) {
		t.Fatal("expected post without targeted terms not to match")
	}

	otherTaxonomy := singularContext(1, "post", map[string][]int64{"post_tag": {3}})
	if Matches(rule, otherTaxonomy) {
		t.Fatal("expected terms in another taxonomy not to match")
	}
}

func TestMatches_TaxonomyAnyEntryMatches(t *testing.T) {
	rule := Rule{DisplayType: DisplayTaxonomies, TargetTaxonomies: []TaxonomyTarget{
		{Taxonomy: "category", Terms: []int64{3}},
		{Taxonomy: "post_tag", Terms: []int64{4}},
	}}

	ctx := singularContext(1, "post", map[string][]int64{"post_tag": {4}})
	if !Matches(rule, ctx) {
		t.Fatal("expected a match through the second entry")
	}
}

func TestMatches_TaxonomyEmptyTermsNeverMatch(t *testing.T) {
	rule := Rule{DisplayType: DisplayTaxonomies, TargetTaxonomies: []TaxonomyTarget{
		{Taxonomy: "category"},
	}}

	ctx := singularContext(1, "post", map[string][]int64{"category": {3}})
	if Matches(rule, ctx) {
		t.Fatal("expected an entry without terms to match nothing")
	}
}

func TestMatches_UnknownDisplayTypeFailsClosed(t *testing.T) {
	rule := Rule{DisplayType: "everywhere"}
	if Matches(rule, singularContext(1, "post", nil)) {
		t.Fatal("expected unknown display types to match nothing")
	}
}
