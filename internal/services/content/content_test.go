package content

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Egham-7/site-context/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	docs    []models.Document
	listErr error
}

func (s *memoryStore) GetDocument(_ context.Context, id uint64) (*models.Document, error) {
	for i := range s.docs {
		if s.docs[i].ID == id {
			d := s.docs[i]
			return &d, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) ListRecent(_ context.Context, types []string, _ int) ([]models.Document, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Document
	for _, d := range s.docs {
		for _, t := range types {
			if d.Type == t {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

var base = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newAggregator(docs ...models.Document) *Aggregator {
	return NewAggregator(&memoryStore{docs: docs}, NewRenderer(), models.ContentConfig{MultiTypes: []string{"post", "page"}, MultiLimit: 5})
}

func doc(id uint64, typ, title, body string, modified time.Time) models.Document {
	return models.Document{ID: id, Type: typ, Title: title, Body: body, Status: models.StatusPublish, CreatedAt: base, ModifiedAt: modified}
}

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		in      string
		want    Identifier
		wantErr bool
	}{
		{"post-12", Identifier{Type: "post", ID: 12}, false},
		{" Page-7 ", Identifier{Type: "page", ID: 7}, false},
		{"case-study-3", Identifier{Type: "case-study", ID: 3}, false},
		{"post", Identifier{}, true},
		{"post-", Identifier{}, true},
		{"-12", Identifier{}, true},
		{"post-abc", Identifier{}, true},
		{"post-0", Identifier{}, true},
	}

	for _, tt := range tests {
		got, err := ParseIdentifier(tt.in)
		if tt.wantErr {
			assert.True(t, models.IsErrorType(err, models.ErrorTypeValidation), tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.want.String(), strings.ToLower(strings.TrimSpace(tt.in)))
	}
}

func TestRendererStripsBlockComments(t *testing.T) {
	r := NewRenderer()
	got := r.Render("<!-- wp:paragraph --><p>Hello</p><!-- /wp:paragraph -->")
	assert.Equal(t, "<p>Hello</p>", got)
}

func TestRendererShortcodes(t *testing.T) {
	r := NewRenderer()
	r.Register("greet", func(attrs map[string]string, content string) string {
		return "Hello " + attrs["name"] + content
	})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"self closing with attrs", `[greet name="Ada" /]`, "Hello Ada"},
		{"enclosing", `[greet name='Bob']!![/greet]`, "Hello Bob!!"},
		{"unquoted attr", `[greet name=Cy]`, "Hello Cy"},
		{"caption keeps content", `[caption id="x"]<img src="a.png"> A cat[/caption]`, `<img src="a.png"> A cat`},
		{"gallery removed", `Before [gallery ids="1,2"] after`, "Before  after"},
		{"unregistered left verbatim", `[unknown foo="bar"]text`, `[unknown foo="bar"]text`},
		{"plain brackets", "array[0] and [ ] stay", "array[0] and [ ] stay"},
		{"nested", `[caption][greet name="Z" /][/caption]`, "Hello Z"},
		{"closing tag case folded", `[caption]Hi[/CAPTION]`, "Hi"},
		{"multibyte body growing when lowercased", "[caption]\u023a\u023a\u023a\u023a\u023a\u023a[/caption]", "\u023a\u023a\u023a\u023a\u023a\u023a"},
		{"multibyte body shrinking when lowercased", "[caption]\u0130\u0130\u0130 text[/caption]", "\u0130\u0130\u0130 text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Render(tt.in))
		})
	}
}

func TestResolveSingleFormats(t *testing.T) {
	a := newAggregator(doc(12, "post", "Fish & Chips", "<!-- wp:paragraph --><p>Crispy.</p><!-- /wp:paragraph -->", base))
	ctx := context.Background()

	tests := []struct {
		format models.Format
		want   string
	}{
		{models.FormatMarkdown, "## Fish & Chips\n\nCrispy.\n"},
		{models.FormatPlain, "Fish & Chips\n\nCrispy."},
		{models.FormatHTML, "<h2>Fish &amp; Chips</h2><div><p>Crispy.</p></div>"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			rc, err := a.Resolve(ctx, models.ContextRequest{Identifier: "post-12", Format: tt.format}, models.Identity{}, "req_test")
			require.NoError(t, err)
			assert.Equal(t, tt.want, rc.Content)
			assert.Equal(t, "post-12", rc.Identifier)
			assert.Equal(t, "Fish & Chips", rc.Metadata["title"])
			assert.Equal(t, "post", rc.Metadata["type"])
			assert.Equal(t, models.StatusPublish, rc.Metadata["status"])
			assert.Equal(t, "2025-01-01T12:00:00Z", rc.Modified())
		})
	}
}

func TestResolveSingleEmptyBody(t *testing.T) {
	a := newAggregator(doc(3, "page", "Blank", "<!-- wp:paragraph --><p></p><!-- /wp:paragraph -->", base))

	rc, err := a.Resolve(context.Background(), models.ContextRequest{Identifier: "page-3", Format: models.FormatMarkdown}, models.Identity{}, "req_test")
	require.NoError(t, err)
	assert.Equal(t, "## Blank\n\nNo content found.\n", rc.Content)
}

func TestResolveSingleErrors(t *testing.T) {
	private := doc(9, "post", "Draft", "secret", base)
	private.Status = "draft"
	protected := doc(10, "post", "Locked", "secret", base)
	protected.Password = "pw"

	a := newAggregator(doc(12, "post", "Hello", "body", base), private, protected)
	ctx := context.Background()

	tests := []struct {
		name       string
		identifier string
		identity   models.Identity
		errType    models.ErrorType
	}{
		{"not found", "post-99", models.Identity{}, models.ErrorTypeNotFound},
		{"type mismatch", "page-12", models.Identity{}, models.ErrorTypeTypeMismatch},
		{"malformed", "post", models.Identity{}, models.ErrorTypeValidation},
		{"draft denied", "post-9", models.Identity{ID: "anon"}, models.ErrorTypeAuthorization},
		{"password denied", "post-10", models.Identity{ID: "anon"}, models.ErrorTypeAuthorization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Resolve(ctx, models.ContextRequest{Identifier: tt.identifier}, tt.identity, "req_test")
			assert.True(t, models.IsErrorType(err, tt.errType), "got %v", err)
		})
	}

	editor := models.Identity{ID: "editor", Capabilities: []string{models.CapabilityReadPrivatePosts}}
	rc, err := a.Resolve(ctx, models.ContextRequest{Identifier: "post-9"}, editor, "req_test")
	require.NoError(t, err)
	assert.Contains(t, rc.Content, "secret")
}

func TestResolveSingleMultibyteShortcodeBody(t *testing.T) {
	body := "[caption]" + strings.Repeat("\u023a", 14) + "[/caption]"
	a := newAggregator(doc(5, "post", "Letters", body, base))

	rc, err := a.Resolve(context.Background(), models.ContextRequest{Identifier: "post-5", Format: models.FormatPlain}, models.Identity{}, "req_test")
	require.NoError(t, err)
	assert.Equal(t, "Letters\n\n"+strings.Repeat("\u023a", 14), rc.Content)
	assert.NotContains(t, rc.Content, "[/caption]")
}

func TestResolveMulti(t *testing.T) {
	a := newAggregator(
		doc(1, "post", "First", "<p>Alpha content</p>", base),
		doc(2, "page", "Second", "<p>Beta content</p>", base.Add(time.Hour)),
	)

	rc, err := a.Resolve(context.Background(), models.ContextRequest{Identifier: " MULTI ", Format: models.FormatMarkdown}, models.Identity{}, "req_test")
	require.NoError(t, err)

	want := "## Second (page-2)\nBeta content\n" + "\n---\n" + "## First (post-1)\nAlpha content\n"
	assert.Equal(t, want, rc.Content)
	assert.Equal(t, "multi", rc.Identifier)
	assert.Equal(t, 2, rc.Metadata["count"])
	assert.Equal(t, "2025-01-01T13:00:00Z", rc.Modified())
	assert.NotContains(t, rc.Metadata, "title")
	assert.NotContains(t, rc.Metadata, "status")

	for _, forbidden := range []string{"acf_field_groups", "post_types", "taxonomies", "generated_at"} {
		assert.NotContains(t, rc.Content, forbidden)
	}
}

func TestResolveMultiOrderingAndLimit(t *testing.T) {
	draft := doc(50, "post", "Draft", "hidden", base.Add(10*time.Hour))
	draft.Status = "draft"

	docs := []models.Document{draft}
	for i := uint64(1); i <= 7; i++ {
		docs = append(docs, doc(i, "post", "Post", "body", base))
	}
	a := newAggregator(docs...)

	rc, err := a.Resolve(context.Background(), models.ContextRequest{Identifier: "multi"}, models.Identity{}, "req_test")
	require.NoError(t, err)

	assert.Equal(t, 5, rc.Metadata["count"])
	assert.NotContains(t, rc.Content, "hidden")
	// equal modification times tie-break by id descending
	assert.Less(t, strings.Index(rc.Content, "(post-7)"), strings.Index(rc.Content, "(post-6)"))
	assert.NotContains(t, rc.Content, "(post-2)")

	again, err := a.Resolve(context.Background(), models.ContextRequest{Identifier: "multi"}, models.Identity{}, "req_test")
	require.NoError(t, err)
	assert.Equal(t, rc.Content, again.Content)
}

func TestResolveMultiEmptyBodyAndNoDocuments(t *testing.T) {
	a := newAggregator(doc(1, "post", "Empty", "", base), doc(2, "post", "Full", "text", base))
	rc, err := a.Resolve(context.Background(), models.ContextRequest{Identifier: "multi"}, models.Identity{}, "req_test")
	require.NoError(t, err)
	assert.Contains(t, rc.Content, "## Empty (post-1)\nNo content found.\n")

	empty := newAggregator()
	rc, err = empty.Resolve(context.Background(), models.ContextRequest{Identifier: "multi"}, models.Identity{}, "req_test")
	require.NoError(t, err)
	assert.Equal(t, EmptyBodyNote, rc.Content)
	assert.Equal(t, 0, rc.Metadata["count"])
}

func TestResolveMultiStoreError(t *testing.T) {
	a := NewAggregator(&memoryStore{listErr: errors.New("db down")}, nil, models.ContentConfig{})
	_, err := a.Resolve(context.Background(), models.ContextRequest{Identifier: "multi"}, models.Identity{}, "req_test")
	assert.True(t, models.IsErrorType(err, models.ErrorTypeInternal))
}
