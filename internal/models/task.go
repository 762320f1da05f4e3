package models

// Task is a single entry in the user's todo list.
type Task struct {
	ID         string `json:"_id"`
	Title      string `json:"title"`
	IsComplete bool   `json:"isComplete"`
}
