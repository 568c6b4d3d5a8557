// AngelaMos | 2026
// entity.go

package farm

type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// defaultTasks is what a user with no stored task list sees.
func defaultTasks() []Task {
	return []Task{
		{ID: "default-1", Text: "Check irrigation in Field A", Completed: true},
		{ID: "default-2", Text: "Plant corn seeds", Completed: false},
		{ID: "default-3", Text: "Order new fertilizer", Completed: false},
	}
}
