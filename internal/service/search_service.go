package service

import (
	"encoding/json"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"

	"github.com/inkwell-blog/inkwell/internal/model"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const postIndex = "posts"

// PostHit is one search result, enough to render a listing entry and link
// back to the post page.
type PostHit struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Date     string `json:"date"`
}

type SearchService interface {
	IndexPost(post *model.Post) error
	DeletePost(id uint) error
	Search(query string) ([]PostHit, error)
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndex()
	return s
}

func (s *searchService) initIndex() {
	sortable := []string{"created_at"}
	if _, err := s.client.Index(postIndex).UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("failed to update %s sortable attributes: %v", postIndex, err)
	}
}

type postDoc struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Date     string `json:"date"`
	Body     string `json:"body"`
	Author   string `json:"author"`
}

// cleanBodyForIndex strips the stored markup down to searchable text.
func (s *searchService) cleanBodyForIndex(body string) string {
	body = strings.ReplaceAll(body, "</p>", " ")
	body = strings.ReplaceAll(body, "<br>", " ")
	body = strings.ReplaceAll(body, "</div>", " ")

	text := html.UnescapeString(s.sanitizer.Sanitize(body))

	return strings.Join(strings.Fields(text), " ")
}

func (s *searchService) IndexPost(post *model.Post) error {
	doc := postDoc{
		ID:       strconv.FormatUint(uint64(post.ID), 10),
		Title:    post.Title,
		Subtitle: post.Subtitle,
		Date:     post.Date,
		Body:     s.cleanBodyForIndex(post.Body),
		Author:   post.Author.Name,
	}

	primaryKey := "id"
	task, err := s.client.Index(postIndex).AddDocuments([]postDoc{doc}, &primaryKey)
	if err != nil {
		return err
	}

	log.Printf("indexed post %d, task id: %d", post.ID, task.TaskUID)
	return nil
}

func (s *searchService) DeletePost(id uint) error {
	_, err := s.client.Index(postIndex).DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

func (s *searchService) Search(query string) ([]PostHit, error) {
	resp, err := s.client.Index(postIndex).Search(query, &meilisearch.SearchRequest{
		Limit: 20,
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	raw, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, err
	}

	var docs []postDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}

	hits := make([]PostHit, 0, len(docs))
	for _, doc := range docs {
		id, err := strconv.ParseUint(doc.ID, 10, 64)
		if err != nil {
			continue
		}
		hits = append(hits, PostHit{
			ID:       uint(id),
			Title:    doc.Title,
			Subtitle: doc.Subtitle,
			Date:     doc.Date,
		})
	}

	return hits, nil
}
