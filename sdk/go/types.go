package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"quizboard/core"
)

// SubmitResult reports what the server did with a submission.
type SubmitResult struct {
	// Entry is the stored leaderboard row, with server-assigned ID, level and date.
	Entry core.Entry
	// Message is the human-readable server acknowledgement.
	Message string
	// Degraded is true when the server persisted the score only in its local
	// fallback because the durable store was unreachable.
	Degraded bool
}

// HealthStatus describes the /healthz response.
type HealthStatus struct {
	Status string                 `json:"status"`
	Checks map[string]interface{} `json:"checks"`
}

func decodeJSON(resp *http.Response, target any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("request failed: status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("request failed: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// ErrEmptyName is returned when the player name is empty.
var ErrEmptyName = errors.New("player name is required")
