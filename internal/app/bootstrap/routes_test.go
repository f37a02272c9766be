package bootstrap

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/taskhive/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testAppConfig() AppConfig {
	return AppConfig{
		JWTSecret:             "test-secret-test-secret-test-secret",
		JWTIssuer:             "taskhive",
		JWTTTL:                time.Hour,
		BaseURL:               "http://localhost:3000",
		SiteName:              "TaskHive",
		ResetExpiry:           time.Hour,
		NotificationRetention: 30 * 24 * time.Hour,
		NotificationSweep:     time.Hour,
	}
}

func TestBuildHandlerWiring(t *testing.T) {
	db := testutil.SetupTestDB(t)

	coreCfg := &config.CoreConfig{Env: "dev"}
	deps := DBDeps{
		TaskHiveMongoClient:   db.Client(),
		TaskHiveMongoDatabase: db,
	}

	h, err := BuildHandler(coreCfg, testAppConfig(), deps, zap.NewNop())
	if err != nil {
		t.Fatalf("BuildHandler failed: %v", err)
	}

	// Health endpoint is reachable without auth.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	// Protected API routes reject anonymous callers.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("GET /api/projects anonymous = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestBuildHandlerRegisterLoginRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)

	coreCfg := &config.CoreConfig{Env: "dev"}
	deps := DBDeps{
		TaskHiveMongoClient:   db.Client(),
		TaskHiveMongoDatabase: db,
	}

	h, err := BuildHandler(coreCfg, testAppConfig(), deps, zap.NewNop())
	if err != nil {
		t.Fatalf("BuildHandler failed: %v", err)
	}

	body := `{"name":"Wire Test","email":"wire@test.com","password":"hunter2hunter2"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	// The issued token must be accepted by the global bearer middleware.
	var payload struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid register response JSON: %v", err)
	}
	if payload.Data.Token == "" {
		t.Fatal("register response missing token")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+payload.Data.Token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/auth/profile with token = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestValidateConfigRejectsDevSecretInProd(t *testing.T) {
	appCfg := testAppConfig()
	appCfg.MongoURI = "mongodb://localhost:27017"
	appCfg.JWTSecret = devJWTSecret

	if err := ValidateConfig(&config.CoreConfig{Env: "dev"}, appCfg, zap.NewNop()); err != nil {
		t.Fatalf("dev env should accept the dev secret, got %v", err)
	}
	if err := ValidateConfig(&config.CoreConfig{Env: "prod"}, appCfg, zap.NewNop()); err == nil {
		t.Fatal("prod env should reject the dev secret")
	}

	appCfg.MongoURI = "not-a-mongo-uri"
	appCfg.JWTSecret = "a-real-secret-a-real-secret-12345"
	if err := ValidateConfig(&config.CoreConfig{Env: "prod"}, appCfg, zap.NewNop()); err == nil {
		t.Fatal("malformed mongo URI should be rejected")
	}
}

func TestWSCheckOrigin(t *testing.T) {
	if wsCheckOrigin("") != nil {
		t.Error("blank origin policy should return nil (gorilla same-origin default)")
	}

	anyOrigin := wsCheckOrigin("*")
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "https://evil.example")
	if !anyOrigin(r) {
		t.Error("wildcard policy should accept any origin")
	}

	exact := wsCheckOrigin("https://taskhive.app")
	if exact(r) {
		t.Error("exact policy should reject a mismatched origin")
	}
	r.Header.Set("Origin", "https://taskhive.app")
	if !exact(r) {
		t.Error("exact policy should accept the configured origin")
	}
}
