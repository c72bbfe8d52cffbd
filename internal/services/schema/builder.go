package schema

import (
	"time"

	"github.com/Egham-7/site-context/internal/models"
	"github.com/Egham-7/site-context/internal/utils"

	"github.com/valyala/bytebufferpool"
)

// BuildAnswer renders the markdown answer for a schema intent. Group and field
// order follows the snapshot; the output ends with a single source footer.
func BuildAnswer(intent models.Intent, snapshot models.SchemaSnapshot) string {
	return utils.BuildString(func(buf *bytebufferpool.ByteBuffer) {
		switch intent.Kind {
		case models.IntentACFByPostType:
			writeFieldGroups(buf, intent, snapshot)
		case models.IntentUnknownPostType:
			writeUnknownPostType(buf, intent.Slug, snapshot)
		case models.IntentGenericSchemaOverview:
			writeOverview(buf, snapshot)
		default:
			buf.WriteString("This question does not concern the site structure.\n")
		}
		buf.WriteString("\n")
		writeFooter(buf, snapshot.GeneratedAt)
	})
}

// AnswerContext wraps a schema answer as the resolved context of a request.
func AnswerContext(identifier string, intent models.Intent, snapshot models.SchemaSnapshot) *models.ResolvedContext {
	generatedAt := ""
	if !snapshot.GeneratedAt.IsZero() {
		generatedAt = snapshot.GeneratedAt.UTC().Format(time.RFC3339)
	}
	return &models.ResolvedContext{
		Identifier: identifier,
		Content:    BuildAnswer(intent, snapshot),
		Metadata: map[string]any{
			"source":       "schema",
			"intent":       string(intent.Kind),
			"slug":         intent.Slug,
			"generated_at": generatedAt,
			"modified":     generatedAt,
		},
	}
}

func writeFieldGroups(buf *bytebufferpool.ByteBuffer, intent models.Intent, snapshot models.SchemaSnapshot) {
	buf.WriteString("## ACF field groups for `" + intent.Slug + "`\n\n")

	var postGroups, blockGroups []models.FieldGroup
	for _, g := range snapshot.FieldGroups {
		switch {
		case g.IsBlockGroup():
			blockGroups = append(blockGroups, g)
		case g.BoundToPostType(intent.Slug):
			postGroups = append(postGroups, g)
		}
	}

	if len(postGroups) == 0 {
		buf.WriteString("No ACF field groups are assigned to the `" + intent.Slug + "` post type.\n")
	}
	for i, g := range postGroups {
		if i > 0 {
			buf.WriteString("\n")
		}
		writeGroup(buf, g)
	}

	if !intent.IncludeBlocks {
		return
	}

	buf.WriteString("\n## Block field groups\n\n")
	if len(blockGroups) == 0 {
		buf.WriteString("No block field groups are registered.\n")
	}
	for i, g := range blockGroups {
		if i > 0 {
			buf.WriteString("\n")
		}
		writeGroup(buf, g)
	}
}

func writeGroup(buf *bytebufferpool.ByteBuffer, g models.FieldGroup) {
	buf.WriteString("### " + g.Title + "\n")
	if len(g.Fields) == 0 {
		buf.WriteString("- (no fields)\n")
		return
	}
	for _, f := range g.Fields {
		buf.WriteString("- " + f.Label + " (`" + f.Name + "`)\n")
	}
}

func writeUnknownPostType(buf *bytebufferpool.ByteBuffer, slug string, snapshot models.SchemaSnapshot) {
	buf.WriteString("The post type `" + slug + "` could not be found.\n\n")
	writeSlugList(buf, "Available post types:", snapshot.PostTypeSlugs(), "No post types are registered.")
}

func writeOverview(buf *bytebufferpool.ByteBuffer, snapshot models.SchemaSnapshot) {
	buf.WriteString("## Post types\n\n")
	writeSlugList(buf, "", snapshot.PostTypeSlugs(), "No post types are registered.")

	taxonomies := make([]string, 0, len(snapshot.Taxonomies))
	for _, tx := range snapshot.Taxonomies {
		taxonomies = append(taxonomies, tx.Slug)
	}
	buf.WriteString("\n## Taxonomies\n\n")
	writeSlugList(buf, "", taxonomies, "No taxonomies are registered.")
}

func writeSlugList(buf *bytebufferpool.ByteBuffer, heading string, slugs []string, empty string) {
	if len(slugs) == 0 {
		buf.WriteString(empty + "\n")
		return
	}
	if heading != "" {
		buf.WriteString(heading + "\n")
	}
	for _, s := range slugs {
		buf.WriteString("- `" + s + "`\n")
	}
}

func writeFooter(buf *bytebufferpool.ByteBuffer, generatedAt time.Time) {
	stamp := "unknown"
	if !generatedAt.IsZero() {
		stamp = generatedAt.UTC().Format(time.RFC3339)
	}
	buf.WriteString("Source: schema (generated at `" + stamp + "`).")
}
