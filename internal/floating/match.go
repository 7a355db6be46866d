package floating

// Matches evaluates a display condition against a view context. Unknown
// display types never match, so records with bad data stay hidden rather
// than leaking onto every page.
func Matches(rule Rule, ctx Context) bool {
	switch rule.DisplayType {
	case DisplaySitewide:
		return true

	case DisplaySpecificPages:
		// The queried object id is compared on every view, not just
		// singular ones; term and post type archives carry one too.
		return containsID(rule.PageIDs, ctx.QueriedObjectID)

	case DisplayPostTypes:
		if len(rule.TargetPostTypes) == 0 {
			return false
		}
		return ctx.IsSingular(rule.TargetPostTypes) || ctx.IsPostTypeArchive(rule.TargetPostTypes)

	case DisplayTaxonomies:
		for _, target := range rule.TargetTaxonomies {
			if matchesTaxonomy(target, ctx) {
				return true
			}
		}
		return false

	default:
		return false
	}
}

// matchesTaxonomy checks one taxonomy target. On archives the archive term
// must be targeted; on singular views the object's terms must intersect the
// target list.
func matchesTaxonomy(target TaxonomyTarget, ctx Context) bool {
	if len(target.Terms) == 0 {
		return false
	}
	if ctx.IsTaxonomyArchive(target.Taxonomy, target.Terms) {
		return true
	}
	// category and post_tag archives historically matched through their own
	// dedicated checks; kept as an alias of the generic archive match.
	if ctx.View == ViewTaxonomyArchive &&
		(target.Taxonomy == "category" || target.Taxonomy == "post_tag") &&
		ctx.Taxonomy == target.Taxonomy && intersects(ctx.TermIDs, target.Terms) {
		return true
	}
	if ctx.View == ViewSingular {
		return intersects(ctx.ObjectTermIDs(target.Taxonomy), target.Terms)
	}
	return false
}
