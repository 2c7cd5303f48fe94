package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/bookworm-api/internal/application"
	"github.com/oksasatya/bookworm-api/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// BookIndex keeps an Elasticsearch index of book posts for full-text search.
type BookIndex struct {
	es    *elasticsearch.Client
	index string
}

// NewBookIndex returns nil when es is nil so callers can treat search as disabled.
func NewBookIndex(es *elasticsearch.Client, index string) *BookIndex {
	if es == nil || index == "" {
		return nil
	}
	return &BookIndex{es: es, index: index}
}

type bookDoc struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Caption   string         `json:"caption"`
	Rating    int            `json:"rating"`
	Image     string         `json:"image"`
	UserID    string         `json:"user_id"`
	Author    *entity.Author `json:"author,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func toDoc(b *entity.Book) bookDoc {
	return bookDoc{
		ID:        b.ID,
		Title:     b.Title,
		Caption:   b.Caption,
		Rating:    b.Rating,
		Image:     b.Image,
		UserID:    b.UserID,
		Author:    b.Author,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func (d bookDoc) toBook() entity.Book {
	return entity.Book{
		ID:        d.ID,
		Title:     d.Title,
		Caption:   d.Caption,
		Rating:    d.Rating,
		Image:     d.Image,
		UserID:    d.UserID,
		Author:    d.Author,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (i *BookIndex) Index(ctx context.Context, b *entity.Book) error {
	body, err := json.Marshal(toDoc(b))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: i.index, DocumentID: b.ID, Body: bytes.NewReader(body), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (i *BookIndex) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: i.index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search performs a multi_match query on title (boosted) and caption.
func (i *BookIndex) Search(ctx context.Context, q string, size int) ([]entity.Book, error) {
	b, err := json.Marshal(buildQuery(q, size))
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := i.es.Search(
		i.es.Search.WithContext(c),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source bookDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.Book, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source.toBook())
	}
	return out, nil
}

func buildQuery(q string, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "caption"},
			},
		},
		"sort": []any{"_score", map[string]any{"created_at": "desc"}},
		"size": size,
	}
}

var _ application.BookIndex = (*BookIndex)(nil)
