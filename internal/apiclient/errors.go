package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the Clax API. Messages carries the
// server-provided validation or business error messages verbatim.
type APIError struct {
	Status   int
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("the server responded with status %d", e.Status)
	}
	return strings.Join(e.Messages, "; ")
}

// apiErrorBody matches the failure payload {message: string | string[]}.
type apiErrorBody struct {
	Message json.RawMessage `json:"message"`
}

// newAPIError builds an APIError from a failure response, reading and
// closing its body.
func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil || len(data) == 0 {
		return apiErr
	}
	var body apiErrorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Message == nil {
		return apiErr
	}
	var messages []string
	if err := json.Unmarshal(body.Message, &messages); err == nil {
		apiErr.Messages = messages
		return apiErr
	}
	var message string
	if err := json.Unmarshal(body.Message, &message); err == nil {
		apiErr.Messages = []string{message}
	}
	return apiErr
}
