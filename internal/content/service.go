package content

import (
	"context"
	"fmt"
	"strings"

	"edpsych-connect/internal/common/logger"
	"edpsych-connect/internal/common/metrics"
)

// ListingCache stores the approved listing between requests.
type ListingCache interface {
	GetListing(ctx context.Context) ([]PostSummary, bool, error)
	SetListing(ctx context.Context, posts []PostSummary) error
	Invalidate(ctx context.Context) error
}

// Indexer makes approved posts searchable.
type Indexer interface {
	IndexPost(ctx context.Context, post *Post) error
	Search(ctx context.Context, query string, limit int) ([]PostSummary, error)
}

// ApprovalNotifier announces newly approved posts.
type ApprovalNotifier interface {
	PostApproved(ctx context.Context, post PostSummary, actor string) error
}

// AuditRecorder keeps a history of approvals.
type AuditRecorder interface {
	RecordApproval(ctx context.Context, filename, actor string) error
}

// Service wraps the Store with the listing cache, search index and approval
// side effects. Only the Store call can fail an operation; every side effect
// is best-effort and logged.
type Service struct {
	store    *Store
	cache    ListingCache
	index    Indexer
	notifier ApprovalNotifier
	audit    AuditRecorder
	log      logger.Logger
}

type ServiceOption func(*Service)

func WithCache(c ListingCache) ServiceOption          { return func(s *Service) { s.cache = c } }
func WithIndexer(i Indexer) ServiceOption             { return func(s *Service) { s.index = i } }
func WithNotifier(n ApprovalNotifier) ServiceOption   { return func(s *Service) { s.notifier = n } }
func WithAuditRecorder(a AuditRecorder) ServiceOption { return func(s *Service) { s.audit = a } }

func NewService(store *Store, log logger.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		log:   log.WithFields(map[string]interface{}{"component": "content-service"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Store() *Store { return s.store }

func (s *Service) ListDrafts(ctx context.Context) ([]Draft, error) {
	return s.store.ListDrafts(ctx)
}

func (s *Service) GetDraft(ctx context.Context, filename string) (*DraftContent, error) {
	return s.store.GetDraft(ctx, filename)
}

// Approve moves the draft and then invalidates the listing, indexes the post,
// notifies subscribers and writes the audit entry.
func (s *Service) Approve(ctx context.Context, filename, actor string) (*PostSummary, error) {
	summary, err := s.store.Approve(ctx, filename)
	if err != nil {
		return nil, err
	}
	metrics.DraftsApproved.Inc()

	s.InvalidateListing(ctx)

	if s.index != nil {
		post, err := s.store.GetPost(ctx, summary.Slug)
		if err == nil {
			err = s.index.IndexPost(ctx, post)
		}
		if err != nil {
			s.warn("Failed to index approved post", filename, err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.PostApproved(ctx, *summary, actor); err != nil {
			s.warn("Failed to publish approval notification", filename, err)
		}
	}
	if s.audit != nil {
		if err := s.audit.RecordApproval(ctx, filename, actor); err != nil {
			s.warn("Failed to record approval audit entry", filename, err)
		}
	}
	return summary, nil
}

// ListApproved serves the listing from cache when possible.
func (s *Service) ListApproved(ctx context.Context) ([]PostSummary, error) {
	if s.cache != nil {
		posts, ok, err := s.cache.GetListing(ctx)
		switch {
		case err != nil:
			metrics.PostsCacheLookups.WithLabelValues("error").Inc()
			s.log.Warn("Listing cache read failed", map[string]interface{}{"error": err.Error()})
		case ok:
			metrics.PostsCacheLookups.WithLabelValues("hit").Inc()
			return posts, nil
		default:
			metrics.PostsCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	posts, err := s.store.ListApproved(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetListing(ctx, posts); err != nil {
			s.log.Warn("Listing cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return posts, nil
}

func (s *Service) GetPost(ctx context.Context, slug string) (*Post, error) {
	return s.store.GetPost(ctx, slug)
}

// Search queries the index and falls back to matching title and excerpt of the listing.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]PostSummary, error) {
	query = strings.TrimSpace(query)
	if limit <= 0 {
		limit = 20
	}

	if s.index != nil && query != "" {
		hits, err := s.index.Search(ctx, query, limit)
		if err == nil {
			return hits, nil
		}
		s.log.Warn("Search index unavailable, using listing scan", map[string]interface{}{"error": err.Error()})
	}

	posts, err := s.ListApproved(ctx)
	if err != nil {
		return nil, err
	}
	return FilterPosts(posts, query, limit), nil
}

// InvalidateListing drops the cached listing.
func (s *Service) InvalidateListing(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("Listing cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}

// Reindex pushes every approved post to the index.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, nil
	}
	posts, err := s.store.ListApproved(ctx)
	if err != nil {
		return 0, err
	}
	indexed := 0
	for _, summary := range posts {
		post, err := s.store.GetPost(ctx, summary.Slug)
		if err != nil {
			return indexed, err
		}
		if err := s.index.IndexPost(ctx, post); err != nil {
			return indexed, fmt.Errorf("index %s: %w", summary.Slug, err)
		}
		indexed++
	}
	return indexed, nil
}

func (s *Service) warn(msg, filename string, err error) {
	s.log.Warn(msg, map[string]interface{}{"filename": filename, "error": err.Error()})
}

// FilterPosts does a case-insensitive substring match over title and excerpt.
// An empty query returns the first limit posts.
func FilterPosts(posts []PostSummary, query string, limit int) []PostSummary {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]PostSummary, 0)
	for _, p := range posts {
		if len(out) == limit {
			break
		}
		if q == "" ||
			strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Excerpt), q) {
			out = append(out, p)
		}
	}
	return out
}
