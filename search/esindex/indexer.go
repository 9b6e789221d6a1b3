// Package esindex implements the search.Indexer interface on Elasticsearch.
package esindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/jrsteele09/go-blog-server/search"
)

const defaultIndexName = "posts"

var _ search.Indexer = (*Indexer)(nil)

type Indexer struct {
	client    *elasticsearch.Client
	indexName string
}

// NewIndexer creates an Indexer on top of an existing Elasticsearch client.
// An empty indexName falls back to "posts".
func NewIndexer(client *elasticsearch.Client, indexName string) *Indexer {
	if indexName == "" {
		indexName = defaultIndexName
	}
	return &Indexer{client: client, indexName: indexName}
}

func (ix *Indexer) IndexPost(ctx context.Context, doc search.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("[Indexer.IndexPost] marshal document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      ix.indexName,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return fmt.Errorf("[Indexer.IndexPost] index request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("[Indexer.IndexPost] index request failed: %s", res.String())
	}
	return nil
}

func (ix *Indexer) RemovePost(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{
		Index:      ix.indexName,
		DocumentID: id,
	}
	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return fmt.Errorf("[Indexer.RemovePost] delete request: %w", err)
	}
	defer res.Body.Close()

	// Deleting an unindexed post is not an error
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("[Indexer.RemovePost] delete request failed: %s", res.String())
	}
	return nil
}

func (ix *Indexer) Search(ctx context.Context, query string, limit int) ([]search.Document, error) {
	esQuery := map[string]any{
		"size": limit,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"title^2", "content", "tags"},
			},
		},
	}

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("[Indexer.Search] encode query: %w", err)
	}

	res, err := ix.client.Search(
		ix.client.Search.WithContext(ctx),
		ix.client.Search.WithIndex(ix.indexName),
		ix.client.Search.WithBody(strings.NewReader(body.String())),
	)
	if err != nil {
		return nil, fmt.Errorf("[Indexer.Search] search request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("[Indexer.Search] search request failed: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source search.Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("[Indexer.Search] decode response: %w", err)
	}

	docs := make([]search.Document, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}
