//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

// Exercises a running environment server end to end: step, reset, state,
// replay and KPI. Point E2E_BASE_URL at the target; E2E_NUM_AGENTS must
// match the server's configured agent count.
func TestRemoteAPI_MainEndpoints(t *testing.T) {
	baseURL := strings.TrimRight(envOr("E2E_BASE_URL", "http://127.0.0.1:7878"), "/")
	numAgents, err := strconv.Atoi(envOr("E2E_NUM_AGENTS", "5"))
	if err != nil {
		t.Fatalf("parse E2E_NUM_AGENTS: %v", err)
	}
	client := &http.Client{Timeout: 60 * time.Second}

	t.Run("step rejects wrong action count", func(t *testing.T) {
		if numAgents == 1 {
			t.Skip("single-agent server accepts a one-action batch")
		}
		status, body := mustJSON(t, client, http.MethodPost, baseURL+"/api/env/step", map[string]any{
			"actions": []map[string]any{{"action": "UP"}},
		})
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", status, string(body))
		}
	})

	t.Run("reset step state replay kpi", func(t *testing.T) {
		status, resetBody := mustJSON(t, client, http.MethodPost, baseURL+"/api/env/reset", nil)
		if status != http.StatusOK {
			t.Fatalf("reset status=%d body=%s", status, string(resetBody))
		}
		var resetResp map[string]any
		if err := json.Unmarshal(resetBody, &resetResp); err != nil {
			t.Fatalf("unmarshal reset: %v body=%s", err, string(resetBody))
		}
		episodeID, _ := resetResp["episode_id"].(string)
		if strings.TrimSpace(episodeID) == "" {
			t.Fatalf("expected episode_id in reset response, got=%v", resetResp)
		}

		actions := make([]map[string]any, numAgents)
		for i := range actions {
			actions[i] = map[string]any{"action": "UP"}
		}
		status, stepBody := mustJSON(t, client, http.MethodPost, baseURL+"/api/env/step", map[string]any{
			"actions": actions,
		})
		if status != http.StatusOK {
			t.Fatalf("step status=%d body=%s", status, string(stepBody))
		}
		var states []map[string]any
		if err := json.Unmarshal(stepBody, &states); err != nil {
			t.Fatalf("unmarshal step: %v body=%s", err, string(stepBody))
		}
		if len(states) != numAgents {
			t.Fatalf("expected %d agent states, got %d", numAgents, len(states))
		}

		status, stateBody, err := doRequest(client, http.MethodGet, baseURL+"/api/env/state", nil)
		if err != nil {
			t.Fatalf("state request: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("state status=%d body=%s", status, string(stateBody))
		}
		var observed map[string]any
		if err := json.Unmarshal(stateBody, &observed); err != nil {
			t.Fatalf("unmarshal state: %v body=%s", err, string(stateBody))
		}
		if observed["state"] == nil {
			t.Fatalf("expected a published state after a step, got=%v", observed)
		}

		replayURL := baseURL + "/api/env/replay?limit=20"
		status, replayBody, err := doRequest(client, http.MethodGet, replayURL, nil)
		if err != nil {
			t.Fatalf("replay request: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("replay status=%d body=%s", status, string(replayBody))
		}
		var rep map[string]any
		if err := json.Unmarshal(replayBody, &rep); err != nil {
			t.Fatalf("unmarshal replay: %v body=%s", err, string(replayBody))
		}
		if len(asSlice(rep["steps"])) == 0 {
			t.Fatalf("expected replay steps in response")
		}

		status, kpiBody, err := doRequest(client, http.MethodGet, baseURL+"/ops/kpi", nil)
		if err != nil {
			t.Fatalf("kpi request: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("kpi status=%d body=%s", status, string(kpiBody))
		}
		var kpi map[string]any
		if err := json.Unmarshal(kpiBody, &kpi); err != nil {
			t.Fatalf("unmarshal kpi: %v body=%s", err, string(kpiBody))
		}
		if _, ok := kpi["step_total"]; !ok {
			t.Fatalf("expected step_total in kpi response")
		}
	})
}

func mustJSON(t *testing.T, client *http.Client, method, url string, body map[string]any) (int, []byte) {
	t.Helper()
	status, respBody, err := doRequest(client, method, url, body)
	if err != nil {
		t.Fatalf("%s %s request failed: %v", method, url, err)
	}
	return status, respBody
}

func doRequest(client *http.Client, method, url string, body map[string]any) (int, []byte, error) {
	var payloadBytes []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		payloadBytes = b
	}

	var lastStatus int
	var lastBody []byte
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		var payload io.Reader
		if len(payloadBytes) > 0 {
			payload = bytes.NewReader(payloadBytes)
		}
		req, err := http.NewRequest(method, url, payload)
		if err != nil {
			return 0, nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		lastStatus, lastBody, lastErr = resp.StatusCode, respBody, nil
		if resp.StatusCode >= 500 {
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		return resp.StatusCode, respBody, nil
	}
	if lastErr != nil {
		return 0, nil, lastErr
	}
	return lastStatus, lastBody, nil
}

func envOr(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}
