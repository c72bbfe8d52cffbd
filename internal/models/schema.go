package models

import "time"

// LocationRule binds a field group to an editor location.
type LocationRule struct {
	Param    string `json:"param" yaml:"param"`
	Operator string `json:"operator" yaml:"operator"`
	Value    string `json:"value" yaml:"value"`
}

// Field is a single custom field of a field group.
type Field struct {
	Label string `json:"label" yaml:"label"`
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type,omitzero" yaml:"type"`
}

// FieldGroup is an ACF field group. Location is a list of OR-ed rule sets.
type FieldGroup struct {
	Key      string           `json:"key,omitzero" yaml:"key"`
	Title    string           `json:"title" yaml:"title"`
	Location [][]LocationRule `json:"location" yaml:"location"`
	Fields   []Field          `json:"fields" yaml:"fields"`
}

// IsBlockGroup reports whether any location rule targets a block.
func (g FieldGroup) IsBlockGroup() bool {
	for _, set := range g.Location {
		for _, rule := range set {
			if rule.Param == "block" {
				return true
			}
		}
	}
	return false
}

// BoundToPostType reports whether a post_type rule binds the group to slug.
func (g FieldGroup) BoundToPostType(slug string) bool {
	for _, set := range g.Location {
		for _, rule := range set {
			if rule.Param == "post_type" && rule.Operator != "!=" && rule.Value == slug {
				return true
			}
		}
	}
	return false
}

// PostType is a registered content type.
type PostType struct {
	Slug  string `json:"slug" yaml:"slug"`
	Label string `json:"label,omitzero" yaml:"label"`
}

// Taxonomy is a registered taxonomy.
type Taxonomy struct {
	Slug      string   `json:"slug" yaml:"slug"`
	Label     string   `json:"label,omitzero" yaml:"label"`
	PostTypes []string `json:"post_types,omitzero" yaml:"post_types"`
}

// SchemaSnapshot is a point-in-time read of the site structure.
type SchemaSnapshot struct {
	PostTypes   []PostType   `json:"post_types" yaml:"post_types"`
	Taxonomies  []Taxonomy   `json:"taxonomies" yaml:"taxonomies"`
	FieldGroups []FieldGroup `json:"acf_field_groups" yaml:"acf_field_groups"`
	GeneratedAt time.Time    `json:"generated_at" yaml:"generated_at"`
}

// PostTypeSlugs returns the registered post type slugs in snapshot order.
func (s SchemaSnapshot) PostTypeSlugs() []string {
	slugs := make([]string, 0, len(s.PostTypes))
	for _, pt := range s.PostTypes {
		slugs = append(slugs, pt.Slug)
	}
	return slugs
}

// IntentKind tags the variant of an Intent.
type IntentKind string

const (
	IntentACFByPostType         IntentKind = "acf_by_post_type"
	IntentGenericSchemaOverview IntentKind = "generic_schema_overview"
	IntentUnknownPostType       IntentKind = "unknown_post_type"
	IntentNotSchemaRelated      IntentKind = "not_schema_related"
)

// Intent is the classified purpose of a prompt. Slug is set for
// acf_by_post_type (the registered slug) and unknown_post_type (the requested slug).
type Intent struct {
	Kind          IntentKind `json:"kind"`
	Slug          string     `json:"slug,omitzero"`
	IncludeBlocks bool       `json:"include_blocks,omitzero"`
}

// IsSchema reports whether the intent is answered from the schema snapshot.
func (i Intent) IsSchema() bool {
	return i.Kind != IntentNotSchemaRelated && i.Kind != ""
}
