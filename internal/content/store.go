// Package content manages the markdown blog: drafts awaiting review, the
// approval move, and the published listing.
package content

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"edpsych-connect/internal/common/errors"
	"edpsych-connect/internal/common/logger"
)

// Extension is the only file type treated as a post.
const Extension = ".md"

// Draft is a post awaiting approval.
type Draft struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
}

// DraftContent is the raw markdown of a draft.
type DraftContent struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// PostSummary is an entry of the approved listing.
type PostSummary struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Excerpt string `json:"excerpt"`
}

// Post is an approved post with its rendered body.
type Post struct {
	PostSummary
	Markdown string `json:"-"`
	HTML     string `json:"html"`
}

// Store is the two-directory file store. It holds no state beyond the paths;
// concurrent approvals of the same file are resolved by the filesystem.
type Store struct {
	draftsDir   string
	approvedDir string
	renderer    *Renderer
	now         func() time.Time
	log         logger.Logger
}

func NewStore(draftsDir, approvedDir string, log logger.Logger) *Store {
	return &Store{
		draftsDir:   draftsDir,
		approvedDir: approvedDir,
		renderer:    NewRenderer(),
		now:         time.Now,
		log:         log.WithFields(map[string]interface{}{"component": "content-store"}),
	}
}

func (s *Store) DraftsDir() string   { return s.draftsDir }
func (s *Store) ApprovedDir() string { return s.approvedDir }

// ValidateFilename accepts only plain base names with the markdown extension.
func ValidateFilename(name string) error {
	if name == "" ||
		strings.ContainsAny(name, `/\`) ||
		strings.HasPrefix(name, ".") ||
		filepath.Base(name) != name ||
		!strings.HasSuffix(name, Extension) ||
		len(name) == len(Extension) {
		return errors.NewInvalidFilenameError(name)
	}
	return nil
}

// TitleFromFilename strips the extension and turns underscores into spaces.
func TitleFromFilename(name string) string {
	return strings.ReplaceAll(strings.TrimSuffix(name, Extension), "_", " ")
}

// ListDrafts returns the markdown files in the drafts directory sorted by
// filename. The directory is created when missing.
func (s *Store) ListDrafts(ctx context.Context) ([]Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.draftsDir, 0o755); err != nil {
		return nil, errors.NewFileOperationError("mkdir drafts", err)
	}

	names, err := markdownFiles(s.draftsDir)
	if err != nil {
		return nil, errors.NewFileOperationError("read drafts", err)
	}

	drafts := make([]Draft, 0, len(names))
	for _, name := range names {
		drafts = append(drafts, Draft{Filename: name, Title: TitleFromFilename(name)})
	}
	return drafts, nil
}

// GetDraft returns a draft's raw markdown.
func (s *Store) GetDraft(ctx context.Context, filename string) (*DraftContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateFilename(filename); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filepath.Join(s.draftsDir, filename))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewDraftNotFoundError(filename)
		}
		return nil, errors.NewFileOperationError("read draft", err)
	}
	return &DraftContent{Filename: filename, Content: string(raw)}, nil
}

// Approve moves a draft into the approved directory with a single rename.
// A missing draft is reported as not found and leaves both directories
// untouched. An approved post with the same name is replaced.
func (s *Store) Approve(ctx context.Context, filename string) (*PostSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateFilename(filename); err != nil {
		return nil, err
	}

	src := filepath.Join(s.draftsDir, filename)
	dst := filepath.Join(s.approvedDir, filename)

	info, err := os.Stat(src)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewDraftNotFoundError(filename)
		}
		return nil, errors.NewFileOperationError("stat draft", err)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.NewDraftNotFoundError(filename)
	}

	if err := os.MkdirAll(s.approvedDir, 0o755); err != nil {
		return nil, errors.NewFileOperationError("mkdir approved", err)
	}

	if _, err := os.Stat(dst); err == nil {
		s.log.Warn("Replacing existing approved post", map[string]interface{}{"filename": filename})
	}

	if err := os.Rename(src, dst); err != nil {
		// Lost a race with another approval of the same draft.
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewDraftNotFoundError(filename)
		}
		return nil, errors.NewFileOperationError("rename", err)
	}

	if _, err := os.Stat(dst); err != nil {
		return nil, errors.NewFileOperationError("verify approved", err)
	}

	s.log.Info("Draft approved", map[string]interface{}{"filename": filename})

	summary, _, err := s.readApproved(filename)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ListApproved returns the published posts, newest first. Posts sharing a
// date are ordered by slug. A missing directory yields an empty listing.
func (s *Store) ListApproved(ctx context.Context) ([]PostSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names, err := markdownFiles(s.approvedDir)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return []PostSummary{}, nil
		}
		return nil, errors.NewFileOperationError("read approved", err)
	}

	posts := make([]PostSummary, 0, len(names))
	for _, name := range names {
		summary, _, err := s.readApproved(name)
		if err != nil {
			// A file removed between listing and reading is skipped.
			if errors.HasCode(err, errors.ErrCodePostNotFound) {
				continue
			}
			return nil, err
		}
		posts = append(posts, *summary)
	}

	SortPosts(posts)
	return posts, nil
}

// GetPost returns an approved post rendered to sanitized HTML.
func (s *Store) GetPost(ctx context.Context, slug string) (*Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filename := slug + Extension
	if err := ValidateFilename(filename); err != nil {
		return nil, errors.NewPostNotFoundError(slug)
	}

	summary, body, err := s.readApproved(filename)
	if err != nil {
		return nil, err
	}

	html, err := s.renderer.Render(body)
	if err != nil {
		return nil, errors.NewInternalError("Failed to render post", err)
	}
	return &Post{PostSummary: *summary, Markdown: string(body), HTML: html}, nil
}

func (s *Store) readApproved(filename string) (*PostSummary, []byte, error) {
	slug := strings.TrimSuffix(filename, Extension)

	raw, err := os.ReadFile(filepath.Join(s.approvedDir, filename))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil, errors.NewPostNotFoundError(slug)
		}
		return nil, nil, errors.NewFileOperationError("read post", err)
	}

	meta, body, err := ParseFrontMatter(raw)
	if err != nil {
		// Malformed front matter falls back to derived metadata.
		s.log.Warn("Ignoring invalid front matter", map[string]interface{}{
			"filename": filename,
			"error":    err.Error(),
		})
		meta, body = FrontMatter{}, raw
	}

	summary := &PostSummary{
		Slug:    slug,
		Title:   meta.Title,
		Date:    meta.Date,
		Excerpt: meta.Excerpt,
	}
	if summary.Title == "" {
		summary.Title = TitleFromFilename(filename)
	}
	if summary.Date == "" {
		summary.Date = s.now().UTC().Format(DateLayout)
	}
	return summary, body, nil
}

// SortPosts orders posts newest first, then by slug.
func SortPosts(posts []PostSummary) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Date != posts[j].Date {
			return posts[i].Date > posts[j].Date
		}
		return posts[i].Slug < posts[j].Slug
	})
}

// markdownFiles lists regular *.md files in dir, sorted by name.
func markdownFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, Extension) || strings.HasPrefix(name, ".") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
