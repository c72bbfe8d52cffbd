// Package intent decides whether a prompt is a structural question about the site schema.
package intent

import (
	"regexp"
	"strings"

	"github.com/Egham-7/site-context/internal/models"
)

var (
	// "<keyword> for/of/on <slug>"
	keywordForSlug = regexp.MustCompile(`\b(?:acf field groups?|acf fields?|acf groups?|acf|field groups?|custom fields?)\s+(for|of|on|in|assigned to|attached to|used by)\s+(?:the\s+|a\s+)?([a-z0-9][a-z0-9_-]*)`)
	// "assigned to <slug> cpt", only when the prompt is about fields
	assignedToSlug = regexp.MustCompile(`\b(?:assigned to|attached to|on|for|of|in)\s+(?:the\s+)?([a-z0-9][a-z0-9_-]*)\s+(?:cpt|post type|custom post type)\b`)
	fieldKeyword   = regexp.MustCompile(`\b(?:acf|fields?|field groups?)\b`)

	// "<slug> ACF"
	slugKeyword = regexp.MustCompile(`\b([a-z0-9][a-z0-9_-]*)\s+(cpt\s+|post type\s+)?(?:acf|field groups?|custom fields)\b`)

	blockSignal = regexp.MustCompile(`\b(?:and|with|plus)\s+(?:include\s+|including\s+)?(?:the\s+)?blocks?\b|\bblocks?\s+(?:for|too|as well)\b|\binclud(?:e|ing)\s+(?:the\s+)?blocks?\b|\bblock (?:fields|field groups|groups)\b`)

	overview = regexp.MustCompile(`\b(?:custom post types?|post types?|cpts?|taxonom(?:y|ies)|acf|field groups?|custom fields|schema|site structure|content types?)\b`)
)

// explicitPrepositions name a post type on their own. "on" and "in" also
// introduce phrases like "on this site" or "in total".
var explicitPrepositions = map[string]struct{}{
	"for": {}, "of": {}, "assigned to": {}, "attached to": {}, "used by": {},
}

// ignoredSlugs are words the slug patterns capture that never name a post type.
var ignoredSlugs = map[string]struct{}{
	"this": {}, "that": {}, "these": {}, "those": {}, "the": {}, "a": {}, "an": {},
	"all": {}, "each": {}, "every": {}, "any": {}, "my": {}, "our": {}, "your": {},
	"its": {}, "their": {}, "site": {}, "website": {}, "list": {}, "show": {},
	"get": {}, "what": {}, "which": {}, "display": {}, "me": {}, "and": {},
	"of": {}, "for": {}, "with": {}, "custom": {}, "are": {}, "is": {},
	"block": {}, "blocks": {}, "cpt": {}, "cpts": {}, "type": {}, "types": {},
}

// Classify maps a prompt onto exactly one intent for the given snapshot.
// It has no side effects; identical inputs give identical results.
func Classify(prompt string, snapshot models.SchemaSnapshot) models.Intent {
	text := strings.Join(strings.Fields(strings.ToLower(prompt)), " ")
	if text == "" {
		return models.Intent{Kind: models.IntentNotSchemaRelated}
	}

	includeBlocks := blockSignal.MatchString(text)

	registered := snapshot.PostTypeSlugs()
	for _, c := range slugCandidates(text) {
		if slug, found := ResolveSlug(c.requested, registered); found {
			return models.Intent{Kind: models.IntentACFByPostType, Slug: slug, IncludeBlocks: includeBlocks}
		}
		if c.explicit {
			return models.Intent{Kind: models.IntentUnknownPostType, Slug: c.requested, IncludeBlocks: includeBlocks}
		}
	}

	if overview.MatchString(text) {
		return models.Intent{Kind: models.IntentGenericSchemaOverview, IncludeBlocks: includeBlocks}
	}

	return models.Intent{Kind: models.IntentNotSchemaRelated}
}

type slugCandidate struct {
	requested string
	// explicit is set when the prompt marks the word as a post type, so an
	// unregistered word is reported instead of ignored.
	explicit bool
}

func slugCandidates(text string) []slugCandidate {
	var out []slugCandidate
	add := func(slug string, explicit bool) {
		slug = strings.Trim(slug, "-_")
		if _, skip := ignoredSlugs[slug]; skip || slug == "" {
			return
		}
		out = append(out, slugCandidate{requested: slug, explicit: explicit})
	}

	for _, m := range keywordForSlug.FindAllStringSubmatch(text, -1) {
		_, strong := explicitPrepositions[m[1]]
		add(m[2], strong)
	}
	if fieldKeyword.MatchString(text) {
		for _, m := range assignedToSlug.FindAllStringSubmatch(text, -1) {
			add(m[1], true)
		}
	}
	for _, m := range slugKeyword.FindAllStringSubmatch(text, -1) {
		add(m[1], m[2] != "")
	}
	return out
}

// ResolveSlug matches a requested slug against registered slugs, case-insensitively,
// folding singular and plural forms and treating '-' and '_' alike.
func ResolveSlug(requested string, registered []string) (string, bool) {
	candidates := slugVariants(strings.ToLower(requested))
	for _, cand := range candidates {
		for _, slug := range registered {
			if normalizeSlug(slug) == normalizeSlug(cand) {
				return slug, true
			}
		}
	}
	return "", false
}

func slugVariants(s string) []string {
	variants := []string{s, s + "s", s + "es"}
	switch {
	case strings.HasSuffix(s, "ies") && len(s) > 3:
		variants = append(variants, strings.TrimSuffix(s, "ies")+"y")
	case strings.HasSuffix(s, "y") && len(s) > 1:
		variants = append(variants, strings.TrimSuffix(s, "y")+"ies")
	}
	if strings.HasSuffix(s, "es") && len(s) > 2 {
		variants = append(variants, strings.TrimSuffix(s, "es"))
	}
	if strings.HasSuffix(s, "s") && len(s) > 1 {
		variants = append(variants, strings.TrimSuffix(s, "s"))
	}
	return variants
}

func normalizeSlug(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", "-")
}
