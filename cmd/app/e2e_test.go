//go:build e2e

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"reviewarena/internal/app/dto"
)

var baseURL string

func init() {
	baseURL = os.Getenv("E2E_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
}

func doJSON(t *testing.T, method, path string, body any, headers map[string]string, out any, wantStatus ...int) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, baseURL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	ok := false
	for _, s := range wantStatus {
		if resp.StatusCode == s {
			ok = true
		}
	}
	if !ok {
		var errBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		t.Fatalf("unexpected status %d on %s %s (want %v), body=%v", resp.StatusCode, method, path, wantStatus, errBody)
	}

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func getJSON(t *testing.T, path string, wantStatus int, out any) {
	t.Helper()
	doJSON(t, http.MethodGet, path, nil, nil, out, wantStatus)
}

func TestE2E_FullFlow(t *testing.T) {
	var health map[string]any
	getJSON(t, "/health", http.StatusOK, &health)

	var levels struct {
		Levels []dto.Level `json:"levels"`
	}
	getJSON(t, "/api/levels", http.StatusOK, &levels)
	if len(levels.Levels) == 0 || levels.Levels[0].RequiredXP != 0 {
		t.Fatalf("expected levels starting at 0 xp, got %+v", levels.Levels)
	}

	var achievements struct {
		Achievements []dto.Achievement `json:"achievements"`
	}
	getJSON(t, "/api/achievements", http.StatusOK, &achievements)
	if len(achievements.Achievements) == 0 {
		t.Fatalf("expected a non-empty achievement catalog")
	}

	// A running sync answers 409; both mean the request was understood.
	doJSON(t, http.MethodPost, "/api/sync", dto.SyncRequest{Type: "incremental"}, nil, nil,
		http.StatusAccepted, http.StatusConflict)
	doJSON(t, http.MethodPost, "/api/sync", dto.SyncRequest{Type: "weekly"}, nil, nil, http.StatusBadRequest)

	var status dto.SyncStatusResponse
	getJSON(t, "/api/sync/status", http.StatusOK, &status)
	if status.Organization == "" {
		t.Fatalf("sync status must name the organization")
	}

	var metrics dto.MetricsResponse
	getJSON(t, "/api/metrics?range=week", http.StatusOK, &metrics)
	if metrics.Range.Value != "week" {
		t.Fatalf("unexpected range %q", metrics.Range.Value)
	}
	getJSON(t, "/api/metrics?range=decade", http.StatusBadRequest, nil)

	var activity dto.ActivityResponse
	getJSON(t, "/api/activity?range=week", http.StatusOK, &activity)
	if len(activity.Days) < 7 {
		t.Fatalf("expected one point per day, got %d", len(activity.Days))
	}

	var board dto.ChallengeBoard
	getJSON(t, "/api/challenges", http.StatusOK, &board)

	getJSON(t, "/api/stats/repositories", http.StatusOK, nil)

	// Without a webhook secret a ping is accepted and ignored.
	doJSON(t, http.MethodPost, "/api/webhooks/github", map[string]any{"zen": "hi"},
		map[string]string{"X-GitHub-Event": "ping", "X-GitHub-Delivery": "e2e"}, nil,
		http.StatusOK, http.StatusUnauthorized)

	if len(metrics.Metrics) == 0 {
		t.Log("no synced members yet, skipping team and challenge checks")
		return
	}

	login := metrics.Metrics[0].Login
	teamName := fmt.Sprintf("e2e-%d", time.Now().UnixNano())

	var teamResp struct {
		Team dto.Team `json:"team"`
	}
	doJSON(t, http.MethodPost, "/api/teams", dto.Team{
		TeamName: teamName,
		Members:  []dto.TeamMember{{Login: login}},
	}, nil, &teamResp, http.StatusCreated)
	if len(teamResp.Team.Members) != 1 {
		t.Fatalf("expected one team member, got %+v", teamResp.Team.Members)
	}
	doJSON(t, http.MethodPost, "/api/teams", dto.Team{TeamName: teamName}, nil, nil, http.StatusBadRequest)

	now := time.Now().UTC()
	var created struct {
		Challenge dto.Challenge `json:"challenge"`
	}
	doJSON(t, http.MethodPost, "/api/challenges", dto.CreateChallengeRequest{
		Name:      "E2E sprint",
		TeamName:  teamName,
		Type:      "review_count",
		Goal:      5,
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(24 * time.Hour),
	}, nil, &created, http.StatusCreated)

	getJSON(t, "/api/challenges", http.StatusOK, &board)
	found := false
	for _, c := range board.Active {
		if c.ID == created.Challenge.ID {
			found = true
			if c.Progress == nil || c.Progress.Goal != 5 {
				t.Fatalf("expected progress against goal 5, got %+v", c.Progress)
			}
		}
	}
	if !found {
		t.Fatalf("expected challenge %s among active ones", created.Challenge.ID)
	}

	var profile dto.Profile
	getJSON(t, fmt.Sprintf("/api/users/%d/profile", metrics.Metrics[0].UserID), http.StatusOK, &profile)
	if profile.Login == "" {
		t.Fatalf("expected profile login")
	}
}
