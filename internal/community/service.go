// AngelaMos | 2026
// service.go

package community

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/agriconnect/internal/core"
	"github.com/carterperez-dev/agriconnect/internal/record"
)

type Author struct {
	Name  string
	Email string
}

type Service struct {
	store *record.Store
}

func NewService(store *record.Store) *Service {
	return &Service{store: store}
}

// List returns the user's feed, newest first. A user who has never posted
// sees the seed posts.
func (s *Service) List(ctx context.Context, email string) []Post {
	posts, ok := record.Get[[]Post](ctx, s.store, email, record.KindPosts)
	if !ok {
		return seedPosts()
	}
	if posts == nil {
		return []Post{}
	}
	return posts
}

func (s *Service) Create(ctx context.Context, author Author, content string) (*Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("create post: %w", core.ErrInvalidInput)
	}

	now := time.Now().UTC()
	post := Post{
		ID:        uuid.New().String(),
		Author:    author.Name,
		AvatarURL: "https://picsum.photos/seed/" + url.PathEscape(author.Email) + "/40/40",
		Content:   content,
		Timestamp: "Just now",
		CreatedAt: &now,
	}

	posts := append([]Post{post}, s.List(ctx, author.Email)...)
	s.store.Set(ctx, author.Email, record.KindPosts, posts)

	return &post, nil
}
