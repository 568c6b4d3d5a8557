// AngelaMos | 2026
// service.go

package farm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/agriconnect/internal/core"
	"github.com/carterperez-dev/agriconnect/internal/record"
)

type Service struct {
	store *record.Store
}

func NewService(store *record.Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, email string) []Task {
	tasks, ok := record.Get[[]Task](ctx, s.store, email, record.KindTasks)
	if !ok {
		return defaultTasks()
	}
	if tasks == nil {
		return []Task{}
	}
	return tasks
}

func (s *Service) Add(ctx context.Context, email, text string) (*Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("add task: %w", core.ErrInvalidInput)
	}

	task := Task{ID: uuid.New().String(), Text: text}

	tasks := append(s.List(ctx, email), task)
	s.store.Set(ctx, email, record.KindTasks, tasks)

	return &task, nil
}

func (s *Service) Toggle(ctx context.Context, email, id string) (*Task, error) {
	tasks := s.List(ctx, email)

	for i := range tasks {
		if tasks[i].ID == id {
			tasks[i].Completed = !tasks[i].Completed
			s.store.Set(ctx, email, record.KindTasks, tasks)
			toggled := tasks[i]
			return &toggled, nil
		}
	}

	return nil, fmt.Errorf("toggle task %s: %w", id, core.ErrNotFound)
}
