// Package search keeps approved blog posts in an Elasticsearch index.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"edpsych-connect/internal/common/errors"
	"edpsych-connect/internal/common/logger"
	"edpsych-connect/internal/content"
)

const indexMapping = `{
  "mappings": {
    "properties": {
      "slug":    {"type": "keyword"},
      "title":   {"type": "text"},
      "date":    {"type": "keyword"},
      "excerpt": {"type": "text"},
      "body":    {"type": "text"}
    }
  }
}`

type document struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Excerpt string `json:"excerpt"`
	Body    string `json:"body"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Index implements content.Indexer on top of Elasticsearch.
type Index struct {
	client *elasticsearch.Client
	index  string
	log    logger.Logger
}

var _ content.Indexer = (*Index)(nil)

func NewIndex(client *elasticsearch.Client, index string, log logger.Logger) *Index {
	return &Index{
		client: client,
		index:  index,
		log:    log.WithFields(map[string]interface{}{"component": "search-index", "index": index}),
	}
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (i *Index) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.index}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return errors.NewElasticsearchConnectionFailedError(err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return errors.NewSearchQueryFailedError("index_exists", fmt.Errorf("unexpected status %s", res.Status()))
	}

	res, err = i.client.Indices.Create(i.index,
		i.client.Indices.Create.WithContext(ctx),
		i.client.Indices.Create.WithBody(bytes.NewReader([]byte(indexMapping))),
	)
	if err != nil {
		return errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.NewSearchQueryFailedError("index_create", responseError(res))
	}

	i.log.Info("Created search index", nil)
	return nil
}

// IndexPost upserts a post keyed by its slug.
func (i *Index) IndexPost(ctx context.Context, post *content.Post) error {
	body, err := json.Marshal(document{
		Slug:    post.Slug,
		Title:   post.Title,
		Date:    post.Date,
		Excerpt: post.Excerpt,
		Body:    post.Markdown,
	})
	if err != nil {
		return errors.NewInternalError("failed to encode search document", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: post.Slug,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewSearchQueryFailedError("index", responseError(res))
	}

	i.log.Debug("Indexed post", map[string]interface{}{"slug": post.Slug})
	return nil
}

// Search runs a multi_match query over title, excerpt and body. An empty
// query matches every document, newest first.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]content.PostSummary, error) {
	var q map[string]interface{}
	if query == "" {
		q = map[string]interface{}{"match_all": map[string]interface{}{}}
	} else {
		q = map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^3", "excerpt^2", "body"},
			},
		}
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(map[string]interface{}{
		"query": q,
		"sort":  []interface{}{"_score", map[string]string{"date": "desc"}},
	}); err != nil {
		return nil, errors.NewInternalError("failed to encode search query", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.index),
		i.client.Search.WithBody(&buf),
		i.client.Search.WithSize(limit),
	)
	if err != nil {
		return nil, errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError("multi_match", responseError(res))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewSearchQueryFailedError("decode", err)
	}

	posts := make([]content.PostSummary, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		posts = append(posts, content.PostSummary{
			Slug:    hit.Source.Slug,
			Title:   hit.Source.Title,
			Date:    hit.Source.Date,
			Excerpt: hit.Source.Excerpt,
		})
	}
	return posts, nil
}

func responseError(res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("%s: %s", res.Status(), bytes.TrimSpace(body))
}
