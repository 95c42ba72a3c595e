package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ZoomClient creates meetings through Zoom's server-to-server OAuth
// flow.  Access tokens are cached until shortly before expiry.
type ZoomClient struct {
	accountID    string
	clientID     string
	clientSecret string
	http         *http.Client

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// NewZoomClient returns a ZoomClient.  Missing credentials leave it
// disabled.
func NewZoomClient(accountID, clientID, clientSecret string) *ZoomClient {
	return &ZoomClient{
		accountID:    accountID,
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether meetings can be created.
func (z *ZoomClient) Enabled() bool {
	return z.accountID != "" && z.clientID != "" && z.clientSecret != ""
}

func (z *ZoomClient) accessToken(ctx context.Context) (string, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.token != "" && time.Now().Before(z.tokenExp) {
		return z.token, nil
	}

	form := url.Values{
		"grant_type": {"account_credentials"},
		"account_id": {z.accountID},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://zoom.us/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(z.clientID, z.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := z.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("zoom: token request failed with status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	z.token = body.AccessToken
	// Refresh a minute early.
	z.tokenExp = time.Now().Add(time.Duration(body.ExpiresIn-60) * time.Second)
	return z.token, nil
}

// CreateMeeting schedules a Zoom meeting and returns its join URL.
func (z *ZoomClient) CreateMeeting(ctx context.Context, topic string, start time.Time, durationMin int) (string, error) {
	if !z.Enabled() {
		return "", ErrDisabled
	}
	token, err := z.accessToken(ctx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]interface{}{
		"topic":      topic,
		"type":       2, // scheduled meeting
		"start_time": start.UTC().Format("2006-01-02T15:04:05Z"),
		"duration":   durationMin,
		"timezone":   "UTC",
		"settings": map[string]interface{}{
			"join_before_host": true,
			"waiting_room":     false,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.zoom.us/v2/users/me/meetings", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := z.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("zoom: meeting create failed with status %d", resp.StatusCode)
	}

	var body struct {
		JoinURL string `json:"join_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.JoinURL, nil
}
