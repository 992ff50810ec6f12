package service

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"anoa.com/warbler/internal/entity"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
)

const UsersIndex = "users"

// MeiliSearchService keeps the users index in sync and queries it.
type MeiliSearchService interface {
	IndexUser(user *entity.User) error
	DeleteUser(id uint) error
	SearchUsers(query string, limit int64) ([]uint, error)
}

// userIndex is the part of meilisearch.IndexManager the service needs.
type userIndex interface {
	AddDocuments(documentsPtr interface{}, primaryKey *string) (*meilisearch.TaskInfo, error)
	DeleteDocument(identifier string) (*meilisearch.TaskInfo, error)
	SearchRaw(query string, request *meilisearch.SearchRequest) (*json.RawMessage, error)
}

type meiliSearchService struct {
	index     userIndex
	sanitizer *bluemonday.Policy
}

func NewMeiliSearchService(client meilisearch.ServiceManager) MeiliSearchService {
	index := client.Index(UsersIndex)

	searchable := []string{"username", "bio", "location"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		log.Warn().Err(err).Msg("Failed to update users searchable attributes")
	}

	log.Info().Msg("Meilisearch users index initialized")
	return newMeiliSearchService(index)
}

func newMeiliSearchService(index userIndex) *meiliSearchService {
	return &meiliSearchService{
		index:     index,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

type meiliUserDoc struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
	ImageURL string `json:"image_url"`
}

func (s *meiliSearchService) cleanContentForIndex(content string) string {
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</p>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)

	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *meiliSearchService) IndexUser(user *entity.User) error {
	doc := meiliUserDoc{
		ID:       user.ID,
		Username: user.Username,
		Bio:      s.cleanContentForIndex(getStringOrEmpty(user.Bio)),
		Location: s.cleanContentForIndex(getStringOrEmpty(user.Location)),
		ImageURL: user.ImageURL,
	}

	task, err := s.index.AddDocuments([]meiliUserDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Debug().Uint("user_id", user.ID).Int64("task_uid", task.TaskUID).Msg("Indexed user")
	return nil
}

func (s *meiliSearchService) DeleteUser(id uint) error {
	_, err := s.index.DeleteDocument(fmt.Sprintf("%d", id))
	return err
}

type searchHits struct {
	Hits []struct {
		ID uint `json:"id"`
	} `json:"hits"`
}

// SearchUsers returns matching user ids in relevance order.
func (s *meiliSearchService) SearchUsers(query string, limit int64) ([]uint, error) {
	raw, err := s.index.SearchRaw(query, &meilisearch.SearchRequest{
		Limit:                limit,
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var res searchHits
	if err := json.Unmarshal(*raw, &res); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]uint, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func getStringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	return &s
}
