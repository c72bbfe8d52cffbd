package schema

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Egham-7/site-context/internal/models"
	"github.com/Egham-7/site-context/internal/services/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const footerPrefix = "Source: schema (generated at "

func fixtureSnapshot() models.SchemaSnapshot {
	return models.SchemaSnapshot{
		PostTypes:  []models.PostType{{Slug: "plots"}, {Slug: "developments"}},
		Taxonomies: []models.Taxonomy{{Slug: "category"}, {Slug: "plot_status"}},
		FieldGroups: []models.FieldGroup{
			{
				Title:    "Plot Details",
				Location: [][]models.LocationRule{{{Param: "post_type", Operator: "==", Value: "plots"}}},
				Fields:   []models.Field{{Label: "Plot Number", Name: "plot_number"}, {Label: "Price", Name: "price"}},
			},
			{
				Title:    "Development Info",
				Location: [][]models.LocationRule{{{Param: "post_type", Operator: "==", Value: "developments"}}},
				Fields:   []models.Field{{Label: "Developer", Name: "developer"}},
			},
			{
				Title: "Plot Gallery Block",
				Location: [][]models.LocationRule{
					{{Param: "block", Operator: "==", Value: "acf/plot-gallery"}},
					{{Param: "post_type", Operator: "==", Value: "plots"}},
				},
				Fields: []models.Field{{Label: "Images", Name: "images"}},
			},
			{
				Title: "Shared SEO",
				Location: [][]models.LocationRule{
					{{Param: "post_type", Operator: "==", Value: "developments"}},
					{{Param: "post_type", Operator: "==", Value: "plots"}},
				},
			},
		},
		GeneratedAt: time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC),
	}
}

func TestBuildAnswerFooterAppearsOnce(t *testing.T) {
	snapshot := fixtureSnapshot()
	intents := []models.Intent{
		{Kind: models.IntentACFByPostType, Slug: "plots"},
		{Kind: models.IntentACFByPostType, Slug: "plots", IncludeBlocks: true},
		{Kind: models.IntentGenericSchemaOverview},
		{Kind: models.IntentUnknownPostType, Slug: "widget"},
		{Kind: models.IntentNotSchemaRelated},
	}

	for _, in := range intents {
		answer := BuildAnswer(in, snapshot)
		assert.Equal(t, 1, strings.Count(answer, footerPrefix), "intent %+v", in)
		assert.True(t, strings.HasSuffix(answer, "Source: schema (generated at `2025-03-04T05:06:07Z`)."))
	}
}

func TestBuildAnswerACFByPostType(t *testing.T) {
	answer := BuildAnswer(models.Intent{Kind: models.IntentACFByPostType, Slug: "plots"}, fixtureSnapshot())

	assert.Contains(t, answer, "## ACF field groups for `plots`")
	assert.Contains(t, answer, "### Plot Details")
	assert.Contains(t, answer, "- Plot Number (`plot_number`)")
	assert.Contains(t, answer, "### Shared SEO")
	assert.NotContains(t, answer, "Development Info")
	assert.NotContains(t, answer, "Plot Gallery Block", "block groups need the block signal")
}

func TestBuildAnswerIncludesBlocksOnSignal(t *testing.T) {
	answer := BuildAnswer(models.Intent{Kind: models.IntentACFByPostType, Slug: "plots", IncludeBlocks: true}, fixtureSnapshot())

	assert.Contains(t, answer, "## Block field groups")
	assert.Contains(t, answer, "### Plot Gallery Block")
	assert.Contains(t, answer, "- Images (`images`)")
	assert.NotContains(t, answer, "Development Info")
}

func TestBuildAnswerNoGroups(t *testing.T) {
	snapshot := fixtureSnapshot()
	snapshot.PostTypes = append(snapshot.PostTypes, models.PostType{Slug: "news"})

	answer := BuildAnswer(models.Intent{Kind: models.IntentACFByPostType, Slug: "news"}, snapshot)
	assert.Contains(t, answer, "No ACF field groups are assigned to the `news` post type.")
}

func TestBuildAnswerUnknownPostType(t *testing.T) {
	answer := BuildAnswer(models.Intent{Kind: models.IntentUnknownPostType, Slug: "widget"}, fixtureSnapshot())

	assert.Contains(t, answer, "The post type `widget` could not be found.")
	assert.Contains(t, answer, "- `plots`")
	assert.Contains(t, answer, "- `developments`")
	assert.NotContains(t, answer, "## Taxonomies")
}

func TestBuildAnswerOverview(t *testing.T) {
	answer := BuildAnswer(models.Intent{Kind: models.IntentGenericSchemaOverview}, fixtureSnapshot())

	want := "## Post types\n\n- `plots`\n- `developments`\n\n## Taxonomies\n\n- `category`\n- `plot_status`\n\n" +
		"Source: schema (generated at `2025-03-04T05:06:07Z`)."
	assert.Equal(t, want, answer)
}

func TestBuildAnswerEmptySnapshot(t *testing.T) {
	answer := BuildAnswer(models.Intent{Kind: models.IntentGenericSchemaOverview}, models.SchemaSnapshot{})
	assert.Contains(t, answer, "No post types are registered.")
	assert.Contains(t, answer, "No taxonomies are registered.")
	assert.True(t, strings.HasSuffix(answer, "Source: schema (generated at `unknown`)."))
}

func TestBuildAnswerDeterministic(t *testing.T) {
	snapshot := fixtureSnapshot()
	in := models.Intent{Kind: models.IntentACFByPostType, Slug: "plots", IncludeBlocks: true}
	first := BuildAnswer(in, snapshot)
	for range 5 {
		assert.Equal(t, first, BuildAnswer(in, snapshot))
	}
}

func TestAnswerContext(t *testing.T) {
	ctx := AnswerContext("multi", models.Intent{Kind: models.IntentGenericSchemaOverview}, fixtureSnapshot())

	assert.Equal(t, "multi", ctx.Identifier)
	assert.Equal(t, "schema", ctx.Metadata["source"])
	assert.Equal(t, "generic_schema_overview", ctx.Metadata["intent"])
	assert.Equal(t, "2025-03-04T05:06:07Z", ctx.Modified())
	assert.NotEmpty(t, ctx.Content)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
post_types:
  - slug: plots
taxonomies:
  - slug: category
acf_field_groups:
  - title: Plot Details
    location:
      - - param: post_type
          operator: "=="
          value: plots
    fields:
      - label: Price
        name: price
generated_at: 2025-03-04T05:06:07Z
`), 0o600))

	snapshot, err := NewFileSource(path).Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"plots"}, snapshot.PostTypeSlugs())
	require.Len(t, snapshot.FieldGroups, 1)
	assert.True(t, snapshot.FieldGroups[0].BoundToPostType("plots"))
	assert.Equal(t, time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC), snapshot.GeneratedAt.UTC())

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.yaml")).Snapshot(context.Background())
	assert.Error(t, err)
}

type countingSource struct {
	calls    int
	snapshot models.SchemaSnapshot
	err      error
}

func (s *countingSource) Snapshot(context.Context) (models.SchemaSnapshot, error) {
	s.calls++
	return s.snapshot, s.err
}

func TestCachedSource(t *testing.T) {
	inner := &countingSource{snapshot: fixtureSnapshot()}
	src := NewCachedSource(inner, cache.NewMemoryCache(8, time.Hour), "test:", 5*time.Minute)

	first, err := src.Snapshot(context.Background())
	require.NoError(t, err)
	second, err := src.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first.PostTypeSlugs(), second.PostTypeSlugs())
	assert.True(t, first.GeneratedAt.Equal(second.GeneratedAt))
}

func TestLoadOrEmptyDegrades(t *testing.T) {
	failing := &countingSource{err: errors.New("collaborator down")}
	snapshot := LoadOrEmpty(context.Background(), failing, "req_test")
	assert.Empty(t, snapshot.PostTypes)
	assert.True(t, snapshot.GeneratedAt.IsZero())

	assert.Equal(t, []string{"plots", "developments"}, LoadOrEmpty(context.Background(), Static(fixtureSnapshot()), "req_test").PostTypeSlugs())
	assert.Empty(t, LoadOrEmpty(context.Background(), nil, "req_test").PostTypes)
}
