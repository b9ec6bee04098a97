// Package client provides a Go HTTP client for the tablero board API.
//
// Client mirrors the server's endpoint structure with strongly-typed
// methods: task CRUD, status changes, responsible management, and the
// statuses/health catalogs. All operations use the same
// [github.com/tablerohq/tablero/pkg/models] entities as the server, and every
// method takes a context so callers control cancellation and deadlines.
//
// Failures carry an [*APIError] when the server answered with an error
// status, so callers can distinguish a 404 from a transport failure:
//
//	task, err := c.GetTask(ctx, id)
//	var apiErr *client.APIError
//	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
//	    // the task is gone
//	}
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tablerohq/tablero/pkg/models"
)

// APIError is returned when the server responds with a 4xx or 5xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: status=%d, message=%s", e.StatusCode, e.Message)
}

// Client provides typed access to the board REST API.
//
// Client instances are safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a board API client. The baseURL should include protocol
// and host (e.g. "http://localhost:3001") without a trailing slash.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// doRequest performs an HTTP request with proper headers.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

// decodeResponse decodes the JSON response into target, converting error
// statuses into *APIError.
func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		message := string(raw)
		if err := json.Unmarshal(raw, &errBody); err == nil && errBody.Error != "" {
			message = errBody.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if target != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Health checks the health status of the server.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	var result map[string]any
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListStatuses returns the fixed ordered status set.
func (c *Client) ListStatuses(ctx context.Context) ([]models.Status, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/statuses", nil)
	if err != nil {
		return nil, err
	}
	var result []models.Status
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Task operations

// ListTasks returns all tasks in creation order.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/tasks", nil)
	if err != nil {
		return nil, err
	}
	var result []models.Task
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetTask retrieves a task by ID.
func (c *Client) GetTask(ctx context.Context, id models.TaskID) (*models.Task, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/tasks/%s", id), nil)
	if err != nil {
		return nil, err
	}
	var result models.Task
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateTaskRequest carries the fields for CreateTask. Status and
// AssigneeID are optional; an omitted status defaults server-side.
type CreateTaskRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Status      models.Status         `json:"status,omitempty"`
	AssigneeID  *models.ResponsibleID `json:"assigneeId,omitempty"`
}

// CreateTask creates a new task.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*models.Task, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/tasks", req)
	if err != nil {
		return nil, err
	}
	var result models.Task
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateTask applies a partial update; only fields present in the patch are
// changed.
func (c *Client) UpdateTask(ctx context.Context, id models.TaskID, patch models.TaskPatch) (*models.Task, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/tasks/%s", id), patch)
	if err != nil {
		return nil, err
	}
	var result models.Task
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetTaskStatus moves a task to the given status and returns the server's
// authoritative entity.
func (c *Client) SetTaskStatus(ctx context.Context, id models.TaskID, status models.Status) (*models.Task, error) {
	body := map[string]models.Status{"status": status}
	resp, err := c.doRequest(ctx, http.MethodPatch, fmt.Sprintf("/tasks/%s/status", id), body)
	if err != nil {
		return nil, err
	}
	var result models.Task
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id models.TaskID) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%s", id), nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

// Responsible operations

// ListResponsibles returns all responsible persons.
func (c *Client) ListResponsibles(ctx context.Context) ([]models.Responsible, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/responsibles", nil)
	if err != nil {
		return nil, err
	}
	var result []models.Responsible
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateResponsibleRequest carries the fields for CreateResponsible.
type CreateResponsibleRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
}

// CreateResponsible creates a new responsible person.
func (c *Client) CreateResponsible(ctx context.Context, req CreateResponsibleRequest) (*models.Responsible, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/responsibles", req)
	if err != nil {
		return nil, err
	}
	var result models.Responsible
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateResponsible applies a partial update to a responsible person.
func (c *Client) UpdateResponsible(ctx context.Context, id models.ResponsibleID, patch models.ResponsiblePatch) (*models.Responsible, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/responsibles/%s", id), patch)
	if err != nil {
		return nil, err
	}
	var result models.Responsible
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteResponsible deletes a responsible person. Tasks assigned to them
// keep a dangling reference, matching server behavior.
func (c *Client) DeleteResponsible(ctx context.Context, id models.ResponsibleID) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/responsibles/%s", id), nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}
