// Package provider contains adapters for the external video-room
// provisioning service.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"dating-lab/domain"
)

const warmBatchSize = 10

// VideoSDK provisions rooms against a videosdk.live-style REST API.
// Every room is an opaque handle; the engine never joins them.
type VideoSDK struct {
	log     *slog.Logger
	baseURL string
	token   string
	client  *http.Client
}

func NewVideoSDK(log *slog.Logger, baseURL, token string, timeout time.Duration) *VideoSDK {
	return &VideoSDK{
		log:     log,
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (v *VideoSDK) CreateRoom(ctx context.Context) (domain.RoomID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/v2/rooms", bytes.NewBufferString("{}"))
	if err != nil {
		return "", err
	}
	req.Header.Set("authorization", v.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("create room: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		RoomID string `json:"roomId"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("create room: decoding response: %w", err)
	}
	if payload.RoomID == "" {
		return "", fmt.Errorf("create room: empty roomId in response")
	}
	return domain.RoomID(payload.RoomID), nil
}

func (v *VideoSDK) CloseRoom(ctx context.Context, id domain.RoomID) error {
	body, _ := json.Marshal(map[string]string{"roomId": string(id)})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/v2/rooms/deactivate-room", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("authorization", v.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("close room %s: unexpected status %d", id, resp.StatusCode)
	}
	return nil
}

// ValidateRoom checks a handle against the provider. A 4xx answer means the
// handle is dead, not that the call failed.
func (v *VideoSDK) ValidateRoom(ctx context.Context, id domain.RoomID) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/v2/rooms/validate/"+string(id), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("authorization", v.token)

	resp, err := v.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return false, nil
	default:
		return false, fmt.Errorf("validate room %s: unexpected status %d", id, resp.StatusCode)
	}
}

// Warm pre-provisions n rooms in batches, the way the admin dashboard used to
// create its room pool up front. Individual failures are logged and skipped.
func (v *VideoSDK) Warm(ctx context.Context, n int) []domain.RoomID {
	var created []domain.RoomID
	for start := 0; start < n; start += warmBatchSize {
		size := warmBatchSize
		if rest := n - start; rest < size {
			size = rest
		}
		for i := 0; i < size; i++ {
			roomID, err := v.CreateRoom(ctx)
			if err != nil {
				v.log.Warn("Warm-up room creation failed", "index", start+i, "error", err)
				continue
			}
			created = append(created, roomID)
		}
	}
	return created
}
