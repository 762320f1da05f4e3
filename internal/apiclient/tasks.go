package apiclient

import (
	"context"
	"net/http"

	"github.com/clax-app/clax-client/internal/models"
)

// Tasks lists the authenticated user's tasks.
func (c *Client) Tasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks)
	return tasks, err
}

// CreateTask creates a new incomplete task.
func (c *Client) CreateTask(ctx context.Context, title string) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPost, "/task", map[string]string{"title": title}, &task)
	return task, err
}

// TaskUpdate is a partial update, nil fields are left untouched.
type TaskUpdate struct {
	Title      *string `json:"title,omitempty"`
	IsComplete *bool   `json:"isComplete,omitempty"`
}

func (c *Client) UpdateTask(ctx context.Context, id string, update TaskUpdate) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPatch, "/task/"+id, update, &task)
	return task, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/task/"+id, nil, nil)
}
