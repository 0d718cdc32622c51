package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"gotocard/internal/logger"
	"gotocard/internal/recommend"
	"gotocard/internal/services"
	"gotocard/internal/testutil"
	"gotocard/internal/validator"
)

const testAPIKey = "test-pipeline-key"

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// testApp holds the full application stack backed by an isolated in-memory SQLite.
type testApp struct {
	Router *gin.Engine
}

func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	svc, err := NewServices(db, services.RecommendationOptions{
		Engine:     recommend.DefaultConfig(),
		MaxRetries: 1,
		CacheSize:  16,
	})
	if err != nil {
		t.Fatalf("failed to build services: %v", err)
	}
	return &testApp{Router: New(svc, Options{
		PipelineAPIKey: testAPIKey,
		CORSOrigins:    []string{"http://localhost:3000"},
	})}
}

func (app *testApp) request(method, path, body, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// mustStatus performs the request and fails the test on an unexpected status.
func (app *testApp) mustStatus(t *testing.T, want int, method, path, body, apiKey string) map[string]interface{} {
	t.Helper()
	rec := app.request(method, path, body, apiKey)
	if rec.Code != want {
		t.Fatalf("%s %s: expected %d, got %d: %s", method, path, want, rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func (app *testApp) createCategory(t *testing.T, name string) string {
	t.Helper()
	res := app.mustStatus(t, http.StatusCreated, http.MethodPost, "/api/v1/categories", fmt.Sprintf(`{"name":%q}`, name), "")
	return res["category"].(map[string]interface{})["id"].(string)
}

func (app *testApp) createUser(t *testing.T, email string, income *float64) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"name":"Test User"}`, email)
	if income != nil {
		body = fmt.Sprintf(`{"email":%q,"name":"Test User","annual_income":%v}`, email, *income)
	}
	res := app.mustStatus(t, http.StatusCreated, http.MethodPost, "/api/v1/users", body, "")
	return res["user"].(map[string]interface{})["id"].(string)
}

func (app *testApp) importCard(t *testing.T, body string) string {
	t.Helper()
	res := app.mustStatus(t, http.StatusCreated, http.MethodPost, "/api/v1/pipeline/cards", body, testAPIKey)
	return res["card"].(map[string]interface{})["id"].(string)
}

func TestHealth(t *testing.T) {
	app := setupApp(t)
	res := app.mustStatus(t, http.StatusOK, http.MethodGet, "/api/health", "", "")
	if res["status"] != "ok" {
		t.Errorf("expected status ok, got %v", res["status"])
	}
}

func TestCORS(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/users", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no allow-origin for unknown origin, got %q", got)
	}
}

func TestPipelineRequiresAPIKey(t *testing.T) {
	app := setupApp(t)
	rec := app.request(http.MethodGet, "/api/v1/pipeline/users", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = app.request(http.MethodGet, "/api/v1/pipeline/users", "", "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRecommendationFlow(t *testing.T) {
	app := setupApp(t)

	dining := app.createCategory(t, "Dining")
	travel := app.createCategory(t, "Travel")

	cashbackCard := app.importCard(t, fmt.Sprintf(`{
		"name": "Dining Cashback", "bank": "Bank A", "card_type": "visa", "annual_fee": 0,
		"source": "singsaver",
		"benefits": [{"category_id": %q, "cashback_rate": 5, "cap": 300}]
	}`, dining))
	milesCard := app.importCard(t, fmt.Sprintf(`{
		"name": "Travel Miles", "bank": "Bank B", "card_type": "mastercard", "annual_fee": 0,
		"source": "moneysmart",
		"benefits": [
			{"category_id": %q, "miles_rate": 2},
			{"category_id": %q, "miles_rate": 3}
		]
	}`, dining, travel))

	userID := app.createUser(t, "flow@test.com", nil)

	// Two entries in the same month are summed to 400.
	for _, amount := range []string{"150", "250"} {
		app.mustStatus(t, http.StatusCreated, http.MethodPost, "/api/v1/spending/users/"+userID,
			fmt.Sprintf(`{"category_id":%q,"amount":%s,"month":3,"year":2025}`, dining, amount), "")
	}
	// An older month is outside the default window.
	app.mustStatus(t, http.StatusCreated, http.MethodPost, "/api/v1/spending/users/"+userID,
		fmt.Sprintf(`{"category_id":%q,"amount":9000,"month":1,"year":2025}`, dining), "")

	summary := app.mustStatus(t, http.StatusOK, http.MethodGet, "/api/v1/spending/users/"+userID+"/summary", "", "")["summary"].(map[string]interface{})
	diningTotal := summary["categories"].(map[string]interface{})[dining].(map[string]interface{})
	if diningTotal["amount"] != float64(400) {
		t.Fatalf("expected dining total 400, got %v", diningTotal["amount"])
	}

	// Nothing generated yet.
	before := app.mustStatus(t, http.StatusOK, http.MethodGet, "/api/v1/recommendations/users/"+userID, "", "")
	if recs := before["recommendations"].([]interface{}); len(recs) != 0 {
		t.Fatalf("expected empty list before generate, got %d", len(recs))
	}

	genRec := app.request(http.MethodPost, "/api/v1/recommendations/users/"+userID+"/generate", "", "")
	if genRec.Code != http.StatusOK {
		t.Fatalf("generate: expected 200, got %d: %s", genRec.Code, genRec.Body.String())
	}
	generated := parseJSON(t, genRec)
	if generated["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", generated["status"])
	}
	recs := generated["recommendations"].([]interface{})
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}

	// 5% of the capped 300 beats 2 miles x 0.015 on 400.
	first := recs[0].(map[string]interface{})
	second := recs[1].(map[string]interface{})
	if first["card"].(map[string]interface{})["id"] != cashbackCard {
		t.Errorf("expected cashback card first, got %v", first["card"])
	}
	if first["estimated_reward"] != float64(15) {
		t.Errorf("expected reward 15, got %v", first["estimated_reward"])
	}
	if second["card"].(map[string]interface{})["id"] != milesCard || second["estimated_reward"] != float64(12) {
		t.Errorf("expected miles card second with reward 12, got %v", second)
	}
	if !strings.Contains(first["reason"].(string), "capped") {
		t.Errorf("expected cap note in reason, got %q", first["reason"])
	}

	// Get returns exactly what Generate committed.
	stored := app.request(http.MethodGet, "/api/v1/recommendations/users/"+userID, "", "")
	var storedBody struct {
		Recommendations json.RawMessage `json:"recommendations"`
	}
	var generatedBody struct {
		Recommendations json.RawMessage `json:"recommendations"`
	}
	_ = json.Unmarshal(stored.Body.Bytes(), &storedBody)
	_ = json.Unmarshal(genRec.Body.Bytes(), &generatedBody)
	if string(storedBody.Recommendations) != string(generatedBody.Recommendations) {
		t.Errorf("stored list differs from generated list\nstored:    %s\ngenerated: %s",
			storedBody.Recommendations, generatedBody.Recommendations)
	}

	// Regenerating with unchanged inputs is byte-identical.
	again := app.request(http.MethodPost, "/api/v1/recommendations/users/"+userID+"/generate", "", "")
	if again.Body.String() != genRec.Body.String() {
		t.Errorf("regenerate differs\nfirst:  %s\nsecond: %s", genRec.Body.String(), again.Body.String())
	}

	byCategory := app.mustStatus(t, http.StatusOK, http.MethodGet,
		"/api/v1/recommendations/users/"+userID+"/categories/"+travel, "", "")
	if recs := byCategory["recommendations"].([]interface{}); len(recs) != 0 {
		t.Errorf("expected no travel recommendations without travel spend, got %d", len(recs))
	}
}

func TestRecommendationFlow_IncomeGate(t *testing.T) {
	app := setupApp(t)

	dining := app.createCategory(t, "Dining")
	app.importCard(t, fmt.Sprintf(`{
		"name": "Premium", "bank": "Bank A", "annual_fee": 500, "min_income": 120000,
		"source": "singsaver",
		"benefits": [{"category_id": %q, "cashback_rate": 8}]
	}`, dining))

	income := 30000.0
	userID := app.createUser(t, "gate@test.com", &income)
	app.mustStatus(t, http.StatusCreated, http.MethodPost, "/api/v1/spending/users/"+userID,
		fmt.Sprintf(`{"category_id":%q,"amount":800,"month":6,"year":2025}`, dining), "")

	res := app.mustStatus(t, http.StatusOK, http.MethodPost, "/api/v1/recommendations/users/"+userID+"/generate", "", "")
	if res["status"] != "no_eligible_cards" {
		t.Errorf("expected no_eligible_cards, got %v", res["status"])
	}
	if recs := res["recommendations"].([]interface{}); len(recs) != 0 {
		t.Errorf("expected empty list, got %d", len(recs))
	}
}

func TestRecommendationFlow_EmptyProfileFallback(t *testing.T) {
	app := setupApp(t)

	dining := app.createCategory(t, "Dining")
	app.importCard(t, fmt.Sprintf(`{
		"name": "Starter", "bank": "Bank A", "source": "singsaver",
		"benefits": [{"category_id": %q, "cashback_rate": 1}]
	}`, dining))
	userID := app.createUser(t, "empty@test.com", nil)

	res := app.mustStatus(t, http.StatusOK, http.MethodPost, "/api/v1/recommendations/users/"+userID+"/generate", "", "")
	recs := res["recommendations"].([]interface{})
	if len(recs) != 1 {
		t.Fatalf("expected 1 fallback recommendation, got %d", len(recs))
	}
	if reason := recs[0].(map[string]interface{})["reason"].(string); !strings.Contains(reason, "default assumptions") {
		t.Errorf("expected fallback reason, got %q", reason)
	}
}

func TestGenerate_UnknownUser(t *testing.T) {
	app := setupApp(t)
	rec := app.request(http.MethodPost, "/api/v1/recommendations/users/0190a3c4-8c3e-7b6a-9f00-5d2e4c1b7a10/generate", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPipelineImportUpdatesExistingCard(t *testing.T) {
	app := setupApp(t)
	dining := app.createCategory(t, "Dining")

	body := `{"name":"Everyday","bank":"Bank C","source":"singsaver","annual_fee":%v,
		"benefits":[{"category_id":%q,"cashback_rate":%v}]}`
	id := app.importCard(t, fmt.Sprintf(body, 0, dining, 2))

	res := app.mustStatus(t, http.StatusOK, http.MethodPost, "/api/v1/pipeline/cards", fmt.Sprintf(body, 60, dining, 3), testAPIKey)
	if res["created"] != false {
		t.Errorf("expected created=false on re-import")
	}

	card := app.mustStatus(t, http.StatusOK, http.MethodGet, "/api/v1/cards/"+id, "", "")["card"].(map[string]interface{})
	if card["annual_fee"] != float64(60) {
		t.Errorf("expected fee 60 after re-import, got %v", card["annual_fee"])
	}
	benefits := card["card_benefits"].([]interface{})
	if len(benefits) != 1 || benefits[0].(map[string]interface{})["cashback_rate"] != float64(3) {
		t.Errorf("expected benefits replaced, got %v", benefits)
	}

	users := app.mustStatus(t, http.StatusOK, http.MethodGet, "/api/v1/pipeline/users", "", testAPIKey)
	if ids := users["user_ids"].([]interface{}); len(ids) != 0 {
		t.Errorf("expected no users, got %d", len(ids))
	}
}
