package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edpsych-connect/internal/common/errors"
	"edpsych-connect/internal/common/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	s := NewStore(filepath.Join(root, "drafts"), filepath.Join(root, "approved"), logger.NewTestLogger(t))
	s.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }
	return s
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestValidateFilename(t *testing.T) {
	valid := []string{"post.md", "My_First_Post.md", "2025-03-01-update.md"}
	invalid := []string{"", ".md", "post.txt", "../secret.md", "a/b.md", `a\b.md`, ".hidden.md", "post.md/", ".."}

	for _, name := range valid {
		assert.NoError(t, ValidateFilename(name), name)
	}
	for _, name := range invalid {
		err := ValidateFilename(name)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFilename), "%q: %v", name, err)
	}
}

func TestListDrafts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	drafts, err := s.ListDrafts(ctx)
	require.NoError(t, err)
	assert.Empty(t, drafts)
	assert.DirExists(t, s.DraftsDir())

	writeFile(t, s.DraftsDir(), "supporting_anxious_pupils.md", "# A")
	writeFile(t, s.DraftsDir(), "adhd-myths.md", "# B")
	writeFile(t, s.DraftsDir(), "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(s.DraftsDir(), "folder.md"), 0o755))

	drafts, err = s.ListDrafts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Draft{
		{Filename: "adhd-myths.md", Title: "adhd-myths"},
		{Filename: "supporting_anxious_pupils.md", Title: "supporting anxious pupils"},
	}, drafts)
}

func TestGetDraft(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	writeFile(t, s.DraftsDir(), "post.md", "---\ntitle: Hello\n---\nBody")

	draft, err := s.GetDraft(ctx, "post.md")
	require.NoError(t, err)
	assert.Equal(t, "post.md", draft.Filename)
	assert.Equal(t, "---\ntitle: Hello\n---\nBody", draft.Content)

	_, err = s.GetDraft(ctx, "missing.md")
	assert.True(t, errors.HasCode(err, errors.ErrCodeDraftNotFound))

	_, err = s.GetDraft(ctx, "../approved/post.md")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFilename))
}

func TestApproveMovesDraft(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	writeFile(t, s.DraftsDir(), "X.md", "---\ntitle: Exam stress\ndate: 2025-01-10\nexcerpt: Tips\n---\nBody")

	summary, err := s.Approve(ctx, "X.md")
	require.NoError(t, err)
	assert.Equal(t, &PostSummary{Slug: "X", Title: "Exam stress", Date: "2025-01-10", Excerpt: "Tips"}, summary)

	assert.NoFileExists(t, filepath.Join(s.DraftsDir(), "X.md"))
	assert.FileExists(t, filepath.Join(s.ApprovedDir(), "X.md"))

	drafts, err := s.ListDrafts(ctx)
	require.NoError(t, err)
	assert.Empty(t, drafts)

	posts, err := s.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "X", posts[0].Slug)
}

func TestApproveMissingDraftChangesNothing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	writeFile(t, s.DraftsDir(), "other.md", "x")

	_, err := s.Approve(ctx, "ghost.md")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDraftNotFound))

	assert.FileExists(t, filepath.Join(s.DraftsDir(), "other.md"))
	assert.NoDirExists(t, s.ApprovedDir())
}

func TestApproveTwiceIsNotFoundSecondTime(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	writeFile(t, s.DraftsDir(), "once.md", "x")

	_, err := s.Approve(ctx, "once.md")
	require.NoError(t, err)

	_, err = s.Approve(ctx, "once.md")
	assert.True(t, errors.HasCode(err, errors.ErrCodeDraftNotFound))
}

func TestApproveReplacesExistingApprovedPost(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	writeFile(t, s.ApprovedDir(), "dup.md", "old")
	writeFile(t, s.DraftsDir(), "dup.md", "new")

	_, err := s.Approve(ctx, "dup.md")
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(s.ApprovedDir(), "dup.md"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestApproveRejectsTraversal(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Approve(context.Background(), "../../etc/passwd.md")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFilename))
}

func TestListApproved(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	posts, err := s.ListApproved(ctx)
	require.NoError(t, err)
	assert.Equal(t, []PostSummary{}, posts)

	writeFile(t, s.ApprovedDir(), "older.md", "---\ntitle: Older\ndate: 2024-06-01\n---\n")
	writeFile(t, s.ApprovedDir(), "newer.md", "---\ndate: 2025-02-01T10:00:00Z\nexcerpt: Latest\n---\n")
	writeFile(t, s.ApprovedDir(), "no_front_matter.md", "# Just markdown")
	writeFile(t, s.ApprovedDir(), "b_same_day.md", "---\ndate: 2024-06-01\n---\n")

	posts, err = s.ListApproved(ctx)
	require.NoError(t, err)
	assert.Equal(t, []PostSummary{
		{Slug: "no_front_matter", Title: "no front matter", Date: "2025-03-14"},
		{Slug: "newer", Title: "newer", Date: "2025-02-01", Excerpt: "Latest"},
		{Slug: "b_same_day", Title: "b same day", Date: "2024-06-01"},
		{Slug: "older", Title: "Older", Date: "2024-06-01"},
	}, posts)
}

func TestGetPostRendersSanitizedHTML(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	writeFile(t, s.ApprovedDir(), "safe.md",
		"---\ntitle: Safe\n---\n# Heading\n\nSome **bold** text.\n\n<script>alert(1)</script>\n\n[link](javascript:alert(1))\n")

	post, err := s.GetPost(ctx, "safe")
	require.NoError(t, err)
	assert.Equal(t, "Safe", post.Title)
	assert.Contains(t, post.HTML, "<strong>bold</strong>")
	assert.Contains(t, post.HTML, "Heading</h1>")
	assert.NotContains(t, post.HTML, "<script")
	assert.NotContains(t, post.HTML, "javascript:")

	_, err = s.GetPost(ctx, "missing")
	assert.True(t, errors.HasCode(err, errors.ErrCodePostNotFound))

	_, err = s.GetPost(ctx, "../drafts/x")
	assert.True(t, errors.HasCode(err, errors.ErrCodePostNotFound))
}

func TestCancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListDrafts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Approve(ctx, "a.md")
	assert.ErrorIs(t, err, context.Canceled)
}
