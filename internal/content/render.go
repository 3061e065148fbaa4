package content

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Renderer converts post markdown to HTML safe to embed in a page.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Render converts markdown and strips anything outside the user-content policy.
func (r *Renderer) Render(markdown []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(markdown, &buf); err != nil {
		return "", err
	}
	return r.policy.Sanitize(buf.String()), nil
}
