package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	defaultAPIBase = "http://localhost:8080"
)

var (
	apiBase   string
	client    = &http.Client{Timeout: 30 * time.Second}
	weekStart string
	testDate  string
	createdID string
)

func main() {
	fmt.Println("=== Family Hub E2E Smoke Test ===")
	fmt.Println()

	apiBase = getEnv("API_BASE_URL", defaultAPIBase)
	fmt.Printf("API Base: %s\n", apiBase)

	// Week of today
	today := time.Now()
	offset := (int(today.Weekday()) + 6) % 7
	weekStart = today.AddDate(0, 0, -offset).Format("2006-01-02")
	testDate = today.Format("2006-01-02")
	fmt.Printf("Week: %s\n", weekStart)
	fmt.Println()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Healthz", testHealthz},
		{"Get Week", testGetWeek},
		{"Create Activity", testCreateActivity},
		{"Week Shows Activity", testWeekShowsActivity},
		{"Request Proposal", testRequestProposal},
		{"Delete Activity", testDeleteActivity},
		{"Invalidate Week", testInvalidateWeek},
	}

	failed := false
	for i, step := range steps {
		fmt.Printf("[%d/%d] %s... ", i+1, len(steps), step.name)
		if err := step.fn(); err != nil {
			fmt.Printf("❌ FAILED\n")
			fmt.Printf("  Error: %v\n\n", err)
			failed = true
			break
		}
		fmt.Printf("✅ OK\n")
	}

	fmt.Println()
	if failed {
		fmt.Println("❌ SMOKE TEST FAILED")
		os.Exit(1)
	}

	fmt.Println("✅ ALL SMOKE TESTS PASSED")
}

func testHealthz() error {
	_, err := call(http.MethodGet, "/healthz", nil, http.StatusOK)
	return err
}

type weekResponse struct {
	SemaineDebut string `json:"semaine_debut"`
	Jours        map[string]struct {
		Activites []struct {
			ID    string `json:"id"`
			Title string `json:"titre"`
		} `json:"activites"`
	} `json:"jours"`
	ToutesAlertes []string `json:"toutes_alertes"`
}

func getWeek() (*weekResponse, error) {
	body, err := call(http.MethodGet, "/v1/weeks/"+weekStart, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var week weekResponse
	if err := json.Unmarshal(body, &week); err != nil {
		return nil, fmt.Errorf("decode week: %w", err)
	}
	return &week, nil
}

func testGetWeek() error {
	week, err := getWeek()
	if err != nil {
		return err
	}
	if week.SemaineDebut != weekStart {
		return fmt.Errorf("semaine_debut=%s, want %s", week.SemaineDebut, weekStart)
	}
	if len(week.Jours) != 7 {
		return fmt.Errorf("expected 7 days, got %d", len(week.Jours))
	}
	return nil
}

func testCreateActivity() error {
	body, err := call(http.MethodPost, "/v1/activities", map[string]any{
		"title":          "Smoke test outing",
		"date":           testDate,
		"estimated_cost": 10,
		"for_child":      true,
	}, http.StatusCreated)
	if err != nil {
		return err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return fmt.Errorf("decode activity: %w", err)
	}
	if created.ID == "" {
		return fmt.Errorf("empty id in response")
	}
	createdID = created.ID
	return nil
}

func testWeekShowsActivity() error {
	week, err := getWeek()
	if err != nil {
		return err
	}
	for _, a := range week.Jours[testDate].Activites {
		if a.ID == createdID {
			return nil
		}
	}
	return fmt.Errorf("activity %s missing from %s", createdID, testDate)
}

func testRequestProposal() error {
	body, err := call(http.MethodPost, "/v1/weeks/"+weekStart+"/proposal", map[string]any{
		"constraints": map[string]any{"budget_max": 150, "energy_level": "low"},
	}, http.StatusOK)
	if err != nil {
		return err
	}

	var result struct {
		Available bool   `json:"available"`
		Reason    string `json:"reason"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decode proposal: %w", err)
	}
	// An unavailable provider is a valid outcome; it must say why.
	if !result.Available && result.Reason == "" {
		return fmt.Errorf("unavailable proposal without reason")
	}
	return nil
}

func testDeleteActivity() error {
	if createdID == "" {
		return fmt.Errorf("no activity created")
	}
	_, err := call(http.MethodDelete, "/v1/activities/"+createdID, nil, http.StatusNoContent)
	return err
}

func testInvalidateWeek() error {
	_, err := call(http.MethodDelete, "/v1/weeks/"+weekStart+"/cache", nil, http.StatusOK)
	return err
}

func call(method, path string, payload any, wantStatus int) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, apiBase+path, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != wantStatus {
		if len(body) > 4096 {
			body = body[:4096]
		}
		return nil, fmt.Errorf("%s %s: status=%d body=%s", method, path, resp.StatusCode, string(body))
	}
	return body, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
