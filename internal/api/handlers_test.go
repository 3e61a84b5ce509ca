package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eunoia-app/eunoia-server/internal/analysis"
	"github.com/eunoia-app/eunoia-server/internal/config"
	"github.com/eunoia-app/eunoia-server/internal/db"
	"github.com/eunoia-app/eunoia-server/internal/inference"
	"github.com/eunoia-app/eunoia-server/internal/models"
)

const demoToken = "demo-token-12345"

func setupTestServer(t *testing.T, jwtSecret string) (*httptest.Server, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "eunoia-api-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	tmpFile.Close()

	cfg := &config.Config{
		Port:           "0",
		DBPath:         tmpFile.Name(),
		HFAPIURL:       "http://localhost:1",
		SentimentModel: "test-org/sentiment-model",
		EmotionModel:   "test-org/emotion-model",
		JWTSecret:      jwtSecret,
		Timezone:       "UTC",
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("opening database: %v", err)
	}

	client := inference.NewClient(cfg.HFAPIURL, "", time.Second)
	analyzer := analysis.NewAnalyzer(client, cfg.SentimentModel, cfg.EmotionModel, false)

	router := NewRouter(cfg, database, analyzer, client)
	server := httptest.NewServer(router)

	cleanup := func() {
		server.Close()
		database.Close()
		os.Remove(tmpFile.Name())
	}

	return server, cleanup
}

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	server, cleanup := setupTestServer(t, "")
	defer cleanup()

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	var body models.HealthResponse
	json.NewDecoder(resp.Body).Decode(&body)

	if body.Status != "ok" {
		t.Errorf("expected status ok, got %s", body.Status)
	}
	if body.Database != "connected" {
		t.Errorf("expected database connected, got %s", body.Database)
	}
	if body.Inference != "rule_based only" {
		t.Errorf("expected rule_based only, got %s", body.Inference)
	}
}

func TestEntriesRequireAuth(t *testing.T) {
	server, cleanup := setupTestServer(t, "")
	defer cleanup()

	resp := doJSON(t, "GET", server.URL+"/api/v1/entries", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json error, got %q", ct)
	}
	var errBody ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
		t.Errorf("auth error body is not JSON: %v", err)
	}
	resp.Body.Close()
	if errBody.Error == "" {
		t.Error("expected error field in auth failure body")
	}

	// Demo mode still rejects trivially short tokens
	resp = doJSON(t, "GET", server.URL+"/api/v1/entries", "short", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 with short token, got %d", resp.StatusCode)
	}
}

func TestReadyEndpoint(t *testing.T) {
	server, cleanup := setupTestServer(t, "")
	defer cleanup()

	resp, err := http.Get(server.URL + "/ready")
	if err != nil {
		t.Fatalf("GET /ready: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "ready" {
		t.Errorf("expected status ready, got %v", body["status"])
	}
}

func TestCreateEntryRunsAnalysis(t *testing.T) {
	server, cleanup := setupTestServer(t, "")
	defer cleanup()

	resp := doJSON(t, "POST", server.URL+"/api/v1/entries", demoToken, models.EntryCreateRequest{
		Content: "I am so happy and grateful today!",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var entry models.EntryResponse
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		t.Fatalf("decoding entry: %v", err)
	}

	if entry.ID == 0 {
		t.Error("expected assigned entry id")
	}
	if entry.AnalysisMethod != "rule_based" {
		t.Errorf("expected rule_based analysis, got %s", entry.AnalysisMethod)
	}
	if entry.SentimentScore != 7.0 {
		t.Errorf("expected sentiment 7.0, got %v", entry.SentimentScore)
	}
	if entry.Emotion != "joy" {
		t.Errorf("expected joy, got %s", entry.Emotion)
	}
	if entry.WordCount != 7 {
		t.Errorf("expected word count 7, got %d", entry.WordCount)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	server, cleanup := setupTestServer(t, "")
	defer cleanup()

	// Whitespace-only content is rejected
	resp := doJSON(t, "POST", server.URL+"/api/v1/entries", demoToken, models.EntryCreateRequest{
		Content: "   \n\t  ",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for blank content, got %d", resp.StatusCode)
	}

	// Oversized content is rejected
	long := make([]byte, maxContentLength+1)
	for i := range long {
		long[i] = 'a'
	}
	resp = doJSON(t, "POST", server.URL+"/api/v1/entries", demoToken, models.EntryCreateRequest{
		Content: string(long),
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for oversized content, got %d", resp.StatusCode)
	}
}

func TestCreateEntryLengthCountsRunes(t *testing.T) {
	server, cleanup := setupTestServer(t, "")
	defer cleanup()

	// 6,000 two-byte runes: 12,000 bytes but well under the character limit
	resp := doJSON(t, "POST", server.URL+"/api/v1/entries", demoToken, models.EntryCreateRequest{
		Content: strings.Repeat("é", 6000),
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("expected 201 for a 6000-character entry, got %d", resp.StatusCode)
	}

	// One rune over the limit is still rejected
	resp = doJSON(t, "POST", server.URL+"/api/v1/entries", demoToken, models.EntryCreateRequest{
		Content: strings.Repeat("é", maxContentLength+1),
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for %d characters, got %d", maxContentLength+1, resp.StatusCode)
	}
}

func TestProfileEndpoints(t *testing.T) {
	server, cleanup := setupTestServer(t, "")
	defer cleanup()

	// First read lazily creates the profile from the token identity
	resp := doJSON(t, "GET", server.URL+"/api/v1/profile", demoToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var profile models.ProfileResponse
	json.NewDecoder(resp.Body).Decode(&profile)
	resp.Body.Close()

	if profile.UserID != "demo-user-123" {
		t.Errorf("expected demo user id, got %s", profile.UserID)
	}
	if profile.Email != "demo@example.com" {
		t.Errorf("expected demo email, got %s", profile.Email)
	}
	if profile.Role != "user" || profile.IsActive != "true" {
		t.Errorf("expected defaults user/true, got %s/%s", profile.Role, profile.IsActive)
	}

	// Partial update leaves unset fields alone
	displayName := "journaler"
	resp = doJSON(t, "PUT", server.URL+"/api/v1/profile", demoToken,
		models.ProfileUpdateRequest{DisplayName: &displayName})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d", resp.StatusCode)
	}
	var updated models.ProfileResponse
	json.NewDecoder(resp.Body).Decode(&updated)
	resp.Body.Close()

	if updated.DisplayName != "journaler" {
		t.Errorf("expected updated display name, got %s", updated.DisplayName)
	}
	if updated.Email != "demo@example.com" || updated.Role != "user" {
		t.Errorf("unset fields changed: %+v", updated)
	}

	// And the change persists
	resp = doJSON(t, "GET", server.URL+"/api/v1/profile", demoToken, nil)
	json.NewDecoder(resp.Body).Decode(&profile)
	resp.Body.Close()
	if profile.DisplayName != "journaler" {
		t.Errorf("expected persisted display name, got %s", profile.DisplayName)
	}
}

func TestUpdateProfileBeforeCreation(t *testing.T) {
	server, cleanup := setupTestServer(t, "")
	defer cleanup()

	role := "admin"
	resp := doJSON(t, "PUT", server.URL+"/api/v1/profile", demoToken,
		models.ProfileUpdateRequest{Role: &role})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 before profile exists, got %d", resp.StatusCode)
	}
}

func TestEntryCRUDFlow(t *testing.T) {
	server, cleanup := setupTestServer(t, "")
	defer cleanup()

	resp := doJSON(t, "POST", server.URL+"/api/v1/entries", demoToken, models.EntryCreateRequest{
		Content: "Feeling sad and lonely tonight.",
	})
	var created models.EntryResponse
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	// Read it back
	resp = doJSON(t, "GET", fmt.Sprintf("%s/api/v1/entries/%d", server.URL, created.ID), demoToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on get, got %d", resp.StatusCode)
	}
	var fetched models.EntryResponse
	json.NewDecoder(resp.Body).Decode(&fetched)
	resp.Body.Close()
	if fetched.Emotion != "sadness" {
		t.Errorf("expected sadness, got %s", fetched.Emotion)
	}

	// Updating content re-analyzes
	newContent := "I am so happy and grateful today!"
	resp = doJSON(t, "PUT", fmt.Sprintf("%s/api/v1/entries/%d", server.URL, created.ID), demoToken,
		models.EntryUpdateRequest{Content: &newContent})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d", resp.StatusCode)
	}
	var updated models.EntryResponse
	json.NewDecoder(resp.Body).Decode(&updated)
	resp.Body.Close()
	if updated.Emotion != "joy" {
		t.Errorf("expected re-analysis to yield joy, got %s", updated.Emotion)
	}
	if updated.SentimentScore != 7.0 {
		t.Errorf("expected re-analyzed sentiment 7.0, got %v", updated.SentimentScore)
	}

	// Delete and confirm it is gone
	resp = doJSON(t, "DELETE", fmt.Sprintf("%s/api/v1/entries/%d", server.URL, created.ID), demoToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", resp.StatusCode)
	}

	resp = doJSON(t, "GET", fmt.Sprintf("%s/api/v1/entries/%d", server.URL, created.ID), demoToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestListEntriesPaginated(t *testing.T) {
	server, cleanup := setupTestServer(t, "")
	defer cleanup()

	for i := 0; i < 3; i++ {
		resp := doJSON(t, "POST", server.URL+"/api/v1/entries", demoToken, models.EntryCreateRequest{
			Content: fmt.Sprintf("Entry number %d about an ordinary day.", i),
		})
		resp.Body.Close()
	}

	resp := doJSON(t, "GET", server.URL+"/api/v1/entries?page=1&per_page=2", demoToken, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var page models.PaginatedEntries
	json.NewDecoder(resp.Body).Decode(&page)

	if page.Total != 3 {
		t.Errorf("expected total 3, got %d", page.Total)
	}
	if len(page.Entries) != 2 {
		t.Errorf("expected 2 entries on page, got %d", len(page.Entries))
	}
	if page.TotalPages != 2 || !page.HasNext || page.HasPrev {
		t.Errorf("unexpected pagination meta %+v", page)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	server, cleanup := setupTestServer(t, "")
	defer cleanup()

	resp := doJSON(t, "POST", server.URL+"/api/v1/entries", demoToken, models.EntryCreateRequest{
		Content: "I am so happy and grateful today!",
	})
	resp.Body.Close()

	resp = doJSON(t, "GET", server.URL+"/api/v1/analytics/trends?days=7", demoToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("trends: expected 200, got %d", resp.StatusCode)
	}
	var trends models.TrendsResponse
	json.NewDecoder(resp.Body).Decode(&trends)
	resp.Body.Close()
	if trends.TotalEntries != 1 || trends.DaysAnalyzed != 7 {
		t.Errorf("unexpected trends meta %+v", trends)
	}

	resp = doJSON(t, "GET", server.URL+"/api/v1/analytics/insights", demoToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("insights: expected 200, got %d", resp.StatusCode)
	}
	var insights models.InsightsResponse
	json.NewDecoder(resp.Body).Decode(&insights)
	resp.Body.Close()
	if !insights.DataAvailable {
		t.Error("expected insights data available")
	}

	resp = doJSON(t, "GET", server.URL+"/api/v1/analytics/stats", demoToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", resp.StatusCode)
	}
	var stats models.StatsResponse
	json.NewDecoder(resp.Body).Decode(&stats)
	resp.Body.Close()
	if stats.TotalEntries != 1 {
		t.Errorf("expected 1 entry in stats, got %d", stats.TotalEntries)
	}
}

func TestMethodsEndpoint(t *testing.T) {
	server, cleanup := setupTestServer(t, "")
	defer cleanup()

	resp := doJSON(t, "GET", server.URL+"/api/v1/ai/methods", demoToken, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var methods models.MethodsResponse
	json.NewDecoder(resp.Body).Decode(&methods)

	if methods.RemoteAvailable {
		t.Error("expected remote unavailable")
	}
	if !methods.RuleBasedAvailable {
		t.Error("expected rule_based available")
	}
	if methods.CurrentMethod != "rule_based" {
		t.Errorf("expected current method rule_based, got %s", methods.CurrentMethod)
	}
}

func TestAnalyzeEndpoints(t *testing.T) {
	server, cleanup := setupTestServer(t, "")
	defer cleanup()

	resp := doJSON(t, "POST", server.URL+"/api/v1/ai/analyze", demoToken, map[string]string{
		"text": "Feeling sad and lonely tonight.",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analyze: expected 200, got %d", resp.StatusCode)
	}
	var result analysis.Result
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()
	if result.SentimentLabel != "negative" || result.AnalysisMethod != "rule_based" {
		t.Errorf("unexpected analysis %+v", result)
	}

	resp = doJSON(t, "POST", server.URL+"/api/v1/ai/analyze/rule-based", demoToken, map[string]string{
		"text": "",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rule-based analyze: expected 200, got %d", resp.StatusCode)
	}
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()
	if result.AnalysisMethod != "empty" {
		t.Errorf("expected empty method for blank text, got %s", result.AnalysisMethod)
	}
}

func TestJWTAuth(t *testing.T) {
	const secret = "test-secret"
	server, cleanup := setupTestServer(t, secret)
	defer cleanup()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	resp := doJSON(t, "POST", server.URL+"/api/v1/entries", signed, models.EntryCreateRequest{
		Content: "An entry written by a verified user.",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("expected 201 with valid JWT, got %d", resp.StatusCode)
	}

	// Wrong signature is rejected
	bad, err := token.SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	resp = doJSON(t, "GET", server.URL+"/api/v1/entries", bad, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad signature, got %d", resp.StatusCode)
	}

	// Demo tokens are not accepted once a secret is configured
	resp = doJSON(t, "GET", server.URL+"/api/v1/entries", demoToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for opaque token with secret set, got %d", resp.StatusCode)
	}
}
