// AngelaMos | 2026
// entity.go

package community

import (
	"time"
)

type Post struct {
	ID        string     `json:"id"`
	Author    string     `json:"author"`
	AvatarURL string     `json:"avatar_url"`
	Content   string     `json:"content"`
	Timestamp string     `json:"timestamp"`
	IsAI      bool       `json:"is_ai,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func seedPosts() []Post {
	return []Post{
		{
			ID:        "seed-1",
			Author:    "Jane Doe",
			AvatarURL: "https://picsum.photos/seed/jane/40/40",
			Content:   "Has anyone had success with no-till farming for corn? Looking for tips!",
			Timestamp: "2 hours ago",
		},
		{
			ID:        "seed-2",
			Author:    "John Smith",
			AvatarURL: "https://picsum.photos/seed/john/40/40",
			Content:   "I'm seeing early signs of blight on my potatoes. What's the best organic treatment you've used?",
			Timestamp: "5 hours ago",
		},
		{
			ID:        "seed-3",
			Author:    "AgriConnect AI",
			AvatarURL: "https://img.icons8.com/fluency/48/bot.png",
			Content:   "Welcome to the community! Ask a question or share your knowledge with fellow farmers.",
			Timestamp: "1 day ago",
			IsAI:      true,
		},
	}
}
