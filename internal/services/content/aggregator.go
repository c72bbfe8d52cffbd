// Package content resolves document identifiers into formatted prompt context.
package content

import (
	"context"
	"fmt"
	"html"
	"sort"
	"time"

	"github.com/Egham-7/site-context/internal/models"
	"github.com/Egham-7/site-context/internal/utils"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/valyala/bytebufferpool"
)

// EmptyBodyNote replaces a body that renders to nothing.
const EmptyBodyNote = "No content found."

const multiSeparator = "\n---\n"

// DocumentStore is the read side of the document collaborator.
type DocumentStore interface {
	// GetDocument returns nil without error when no document has the id.
	GetDocument(ctx context.Context, id uint64) (*models.Document, error)
	// ListRecent returns public documents of the given types, most recently modified first.
	ListRecent(ctx context.Context, types []string, limit int) ([]models.Document, error)
}

// Aggregator builds ResolvedContext values from stored documents.
type Aggregator struct {
	store      DocumentStore
	renderer   *Renderer
	multiTypes []string
	multiLimit int
}

// NewAggregator creates an aggregator. multiLimit bounds the multi-document digest.
func NewAggregator(store DocumentStore, renderer *Renderer, cfg models.ContentConfig) *Aggregator {
	if renderer == nil {
		renderer = NewRenderer()
	}
	limit := cfg.MultiLimit
	if limit <= 0 {
		limit = 5
	}
	return &Aggregator{store: store, renderer: renderer, multiTypes: cfg.MultiTypes, multiLimit: limit}
}

// Resolve returns the formatted context for a request identifier.
func (a *Aggregator) Resolve(ctx context.Context, req models.ContextRequest, identity models.Identity, requestID string) (*models.ResolvedContext, error) {
	if req.IsMulti() {
		return a.resolveMulti(ctx, req.Format, requestID)
	}
	return a.resolveSingle(ctx, req, identity, requestID)
}

func (a *Aggregator) resolveSingle(ctx context.Context, req models.ContextRequest, identity models.Identity, requestID string) (*models.ResolvedContext, error) {
	ident, err := ParseIdentifier(req.Identifier)
	if err != nil {
		return nil, err
	}

	doc, err := a.store.GetDocument(ctx, ident.ID)
	if err != nil {
		return nil, models.NewInternalError("document lookup failed", err)
	}
	if doc == nil {
		fiberlog.Infof("[%s] Document %s not found", requestID, ident)
		return nil, models.NewNotFoundError(ident.String())
	}
	if doc.Type != ident.Type {
		fiberlog.Infof("[%s] Identifier %s resolves to a %s", requestID, ident, doc.Type)
		return nil, models.NewTypeMismatchError(ident.Type, doc.Type)
	}
	if !doc.IsPublic() && !identity.Can(models.CapabilityReadPrivatePosts) {
		fiberlog.Warnf("[%s] Identity %s denied access to non-public %s", requestID, identity.ID, ident)
		return nil, models.NewAccessDeniedError(fmt.Sprintf("you are not allowed to read %s", ident))
	}

	return &models.ResolvedContext{
		Identifier: doc.StableID(),
		Content:    a.formatDocument(*doc, req.Format),
		Metadata: map[string]any{
			"id":       doc.ID,
			"title":    doc.Title,
			"type":     doc.Type,
			"status":   doc.Status,
			"created":  timestamp(doc.CreatedAt),
			"modified": timestamp(doc.ModifiedAt),
		},
	}, nil
}

func (a *Aggregator) resolveMulti(ctx context.Context, format models.Format, requestID string) (*models.ResolvedContext, error) {
	docs, err := a.store.ListRecent(ctx, a.multiTypes, a.multiLimit)
	if err != nil {
		return nil, models.NewInternalError("recent document listing failed", err)
	}

	public := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if d.IsPublic() {
			public = append(public, d)
		}
	}
	sortRecent(public)
	if len(public) > a.multiLimit {
		public = public[:a.multiLimit]
	}

	var latest time.Time
	content := utils.BuildString(func(buf *bytebufferpool.ByteBuffer) {
		for i, d := range public {
			if i > 0 {
				buf.WriteString(multiSeparator)
			}
			buf.WriteString("## " + d.Title + " (" + d.StableID() + ")\n")
			buf.WriteString(a.body(d, format) + "\n")
			if d.ModifiedAt.After(latest) {
				latest = d.ModifiedAt
			}
		}
	})
	if content == "" {
		content = EmptyBodyNote
	}

	fiberlog.Debugf("[%s] Aggregated %d recent documents", requestID, len(public))

	return &models.ResolvedContext{
		Identifier: models.MultiIdentifier,
		Content:    content,
		Metadata: map[string]any{
			"count":    len(public),
			"modified": timestamp(latest),
		},
	}, nil
}

func (a *Aggregator) formatDocument(doc models.Document, format models.Format) string {
	body := a.body(doc, format)
	switch format {
	case models.FormatHTML:
		return "<h2>" + html.EscapeString(doc.Title) + "</h2><div>" + body + "</div>"
	case models.FormatPlain:
		return doc.Title + "\n\n" + body
	default:
		return "## " + doc.Title + "\n\n" + body + "\n"
	}
}

// body renders the document and never returns an empty string.
func (a *Aggregator) body(doc models.Document, format models.Format) string {
	rendered := a.renderer.Render(doc.Body)
	text := utils.StripMarkup(rendered)
	if text == "" {
		return EmptyBodyNote
	}
	if format == models.FormatHTML {
		return rendered
	}
	return text
}

// sortRecent orders documents by modification time, newest first, then by id descending.
func sortRecent(docs []models.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].ModifiedAt.Equal(docs[j].ModifiedAt) {
			return docs[i].ModifiedAt.After(docs[j].ModifiedAt)
		}
		return docs[i].ID > docs[j].ID
	})
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
