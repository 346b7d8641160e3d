package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/voxo-cms/internal/api"
	"github.com/voxo-cms/internal/config"
	"github.com/voxo-cms/internal/mocks"
	"github.com/voxo-cms/internal/models"
	"github.com/voxo-cms/internal/pipeline"
	"github.com/voxo-cms/internal/prompts"
	"github.com/voxo-cms/internal/service"
)

const adminPassword = "let-me-in"

type testEnv struct {
	router     *gin.Engine
	store      *mocks.Store
	desk       *mocks.MockDeskService
	media      *mocks.MockMediaService
	newsletter *mocks.MockNewsletterService
	stats      *mocks.MockStatsService
}

func setupTestRouter() *testEnv {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:  config.ServerConfig{Port: "8080", BaseURL: "https://voxo.test", SiteTitle: "Voxo"},
		Storage: config.StorageConfig{MaxUploadSize: 1024 * 1024},
		Auth:    config.AuthConfig{AdminPassword: adminPassword, JWTSecret: "test-secret", TokenTTL: time.Hour},
		Cache:   config.CacheConfig{TTL: time.Minute},
	}

	log := zerolog.Nop()
	repos, store := mocks.NewRepositories()
	services := service.NewServices(repos, service.Dependencies{}, cfg, log)

	env := &testEnv{
		store:      store,
		desk:       mocks.NewMockDeskService(),
		media:      mocks.NewMockMediaService(),
		newsletter: mocks.NewMockNewsletterService(),
		stats:      mocks.NewMockStatsService(),
	}
	services.Desk = env.desk
	services.Media = env.media
	services.Newsletter = env.newsletter
	services.Stats = env.stats

	env.router = api.NewRouter(services, cfg, log)
	return env
}

func (e *testEnv) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	w := e.do("POST", "/api/admin/login", map[string]string{"password": adminPassword}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Login failed with status %d: %s", w.Code, w.Body.String())
	}
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	token, _ := response["token"].(string)
	if token == "" {
		t.Fatal("Expected a token")
	}
	return token
}

func (e *testEnv) seedPost(id, slug string, published bool) {
	e.store.Posts.Posts[id] = &models.Post{
		ID:          id,
		Title:       "Post " + id,
		Content:     "<p>Body of " + id + "</p>",
		Slug:        slug,
		IsPublished: published,
		Tags:        []string{"kpop"},
		CreatedAt:   time.Now(),
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestRouter()

	w := env.do("GET", "/health", nil, "")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if response["service"] != "voxo" {
		t.Errorf("Expected service name, got %v", response["service"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestRouter()
	env.stats.Values["posts"] = 1000

	w := env.do("GET", "/metrics", nil, "")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	db := response["database"].(map[string]interface{})
	if db["posts"].(float64) != 1000 {
		t.Errorf("Expected 1000 posts, got %v", db["posts"])
	}
}

func TestCORSHeaders(t *testing.T) {
	env := setupTestRouter()

	w := env.do("OPTIONS", "/api/posts", nil, "")

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS origin header")
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Authorization") {
		t.Error("Expected Authorization to be an allowed header")
	}
}

func TestPublicPosts(t *testing.T) {
	env := setupTestRouter()
	env.seedPost("p1", "live-post", true)
	env.seedPost("p2", "draft-post", false)

	w := env.do("GET", "/api/posts?page=1&limit=5", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var page models.PostPage
	json.Unmarshal(w.Body.Bytes(), &page)
	if page.Total != 1 || len(page.Posts) != 1 || page.Posts[0].Slug != "live-post" {
		t.Errorf("Expected only the published post, got %+v", page)
	}

	w = env.do("GET", "/api/posts/live-post", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var post models.Post
	json.Unmarshal(w.Body.Bytes(), &post)
	if post.ViewCount != 1 {
		t.Errorf("Expected view count 1, got %d", post.ViewCount)
	}

	w = env.do("GET", "/api/posts/draft-post", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected drafts to 404, got %d", w.Code)
	}
}

func TestSearchAndHome(t *testing.T) {
	env := setupTestRouter()
	env.seedPost("p1", "live-post", true)

	w := env.do("GET", "/api/posts/search?q=p1", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var search struct {
		Posts []models.Post `json:"posts"`
	}
	json.Unmarshal(w.Body.Bytes(), &search)
	if len(search.Posts) != 1 {
		t.Errorf("Expected 1 result, got %d", len(search.Posts))
	}

	w = env.do("GET", "/api/home", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var home models.Home
	json.Unmarshal(w.Body.Bytes(), &home)
	if len(home.Latest) != 1 {
		t.Errorf("Expected 1 latest post, got %d", len(home.Latest))
	}
}

func TestCategoryPosts_NotFound(t *testing.T) {
	env := setupTestRouter()

	w := env.do("GET", "/api/categories/missing/posts", nil, "")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestSubscribe(t *testing.T) {
	env := setupTestRouter()

	tests := []struct {
		name           string
		email          string
		expectedStatus int
	}{
		{"new subscriber", "Reader@Example.com", http.StatusCreated},
		{"duplicate", "reader@example.com", http.StatusConflict},
		{"invalid", "nope", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do("POST", "/api/subscribe", map[string]string{"email": tt.email}, "")
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}

	w := env.do("POST", "/api/unsubscribe", map[string]string{"email": "reader@example.com"}, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestAdminRequiresToken(t *testing.T) {
	env := setupTestRouter()

	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do("GET", "/api/admin/posts", nil, tt.token)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", w.Code)
			}
		})
	}
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	env := setupTestRouter()

	w := env.do("POST", "/api/admin/login", map[string]string{"password": "guess"}, "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestAdminPostLifecycle(t *testing.T) {
	env := setupTestRouter()
	token := env.login(t)

	w := env.do("POST", "/api/admin/posts", map[string]interface{}{
		"title": "Ditto Review",
		"tags":  []string{"NewJeans"},
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var created models.Post
	json.Unmarshal(w.Body.Bytes(), &created)
	if created.Slug != "ditto-review" || created.IsPublished {
		t.Errorf("Unexpected post %+v", created)
	}

	w = env.do("PATCH", "/api/admin/posts/"+created.ID+"/publish", map[string]bool{"published": true}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !env.store.Posts.Posts[created.ID].IsPublished {
		t.Error("Expected post to be published")
	}

	w = env.do("GET", "/api/admin/posts", nil, token)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	w = env.do("DELETE", "/api/admin/posts/"+created.ID, nil, token)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	w = env.do("DELETE", "/api/admin/posts/"+created.ID, nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestAdminMalformedID(t *testing.T) {
	env := setupTestRouter()
	token := env.login(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
	}{
		{"get post", "GET", "/api/admin/posts/abc", nil},
		{"update post", "PUT", "/api/admin/posts/abc", map[string]string{"title": "x"}},
		{"publish post", "PATCH", "/api/admin/posts/abc/publish", map[string]bool{"published": true}},
		{"delete post", "DELETE", "/api/admin/posts/abc", nil},
		{"update category", "PUT", "/api/admin/categories/abc", map[string]string{"name": "x"}},
		{"delete category", "DELETE", "/api/admin/categories/abc", nil},
		{"update tag", "PUT", "/api/admin/tags/abc", map[string]string{"name": "x"}},
		{"delete tag", "DELETE", "/api/admin/tags/abc", nil},
		{"delete subscriber", "DELETE", "/api/admin/subscribers/abc", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(tt.method, tt.path, tt.body, token)
			if w.Code != http.StatusNotFound {
				t.Errorf("Expected status 404, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestAdminCreatePost_Validation(t *testing.T) {
	env := setupTestRouter()
	token := env.login(t)

	rating := 11.0
	w := env.do("POST", "/api/admin/posts", models.PostInput{Title: "Too good", Rating: &rating}, token)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	details, ok := response["details"].([]interface{})
	if !ok || len(details) != 1 {
		t.Errorf("Expected one field error, got %v", response["details"])
	}
}

func TestAdminSettings(t *testing.T) {
	env := setupTestRouter()
	token := env.login(t)

	w := env.do("PUT", "/api/admin/settings/"+prompts.SettingAPIKey, map[string]string{"value": "secret-key-9876"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	w = env.do("GET", "/api/admin/settings/"+prompts.SettingAPIKey, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var setting models.Setting
	json.Unmarshal(w.Body.Bytes(), &setting)
	if setting.Value != "****9876" {
		t.Errorf("Expected masked value, got %s", setting.Value)
	}

	w = env.do("PUT", "/api/admin/settings/site_title", map[string]string{}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without a value, got %d", w.Code)
	}
}

func TestAdminUpload(t *testing.T) {
	env := setupTestRouter()
	token := env.login(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="cover.png"`)
	header.Set("Content-Type", "image/png")
	part, _ := writer.CreatePart(header)
	part.Write([]byte("\x89PNG fake"))
	writer.Close()

	req := httptest.NewRequest("POST", "/api/admin/uploads", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(env.media.Uploads) != 1 || env.media.Uploads[0] != "image/png" {
		t.Errorf("Expected one png upload, got %v", env.media.Uploads)
	}
}

func TestAdminUpload_MissingFile(t *testing.T) {
	env := setupTestRouter()
	token := env.login(t)

	w := env.do("POST", "/api/admin/uploads", nil, token)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestSpotifyLookup(t *testing.T) {
	env := setupTestRouter()
	token := env.login(t)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
	}{
		{"demo artist", "?q=newjeans", http.StatusOK},
		{"unknown artist", "?q=nobody", http.StatusNotFound},
		{"missing query", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do("GET", "/api/admin/spotify/artist"+tt.query, nil, token)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestBroadcasts(t *testing.T) {
	env := setupTestRouter()
	token := env.login(t)

	w := env.do("POST", "/api/admin/broadcasts", models.BroadcastRequest{Subject: "Weekly", BodyHTML: "<p>Hi</p>"}, token)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d", w.Code)
	}

	w = env.do("GET", "/api/admin/broadcasts/test-broadcast-id", nil, token)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	w = env.do("GET", "/api/admin/broadcasts/missing", nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestFeed(t *testing.T) {
	env := setupTestRouter()
	env.seedPost("p1", "live-post", true)

	w := env.do("GET", "/feed.xml", nil, "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "application/rss+xml") {
		t.Errorf("Unexpected content type %s", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "https://voxo.test/posts/live-post") {
		t.Error("Expected the post link in the feed")
	}
}

func TestGenerate_StreamsEvents(t *testing.T) {
	env := setupTestRouter()
	token := env.login(t)

	w := env.do("POST", "/api/ai/generate-v3", map[string]string{
		"artistName": "NewJeans",
		"songTitle":  "Ditto",
		"language":   "Korean",
	}, token)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/event-stream") {
		t.Errorf("Expected an event stream, got %s", w.Header().Get("Content-Type"))
	}

	body := w.Body.String()
	for _, want := range []string{"event:state", `"stage":"research"`, "event:log", "event:complete", `"postId":"test-post-id"`} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected %q in stream:\n%s", want, body)
		}
	}
	if strings.Contains(body, "event:error") {
		t.Error("Did not expect an error event")
	}

	if len(env.desk.Requests) != 1 || env.desk.Requests[0].Language != "Korean" {
		t.Errorf("Expected the request to reach the desk, got %+v", env.desk.Requests)
	}
}

func TestGenerate_ErrorEvent(t *testing.T) {
	env := setupTestRouter()
	token := env.login(t)
	env.desk.GenerateFunc = func(ctx context.Context, req pipeline.Request, em pipeline.Emitter) (string, error) {
		defer em.Close()
		em.State(pipeline.StageResearch, 25)
		em.Error("research failed: quota exceeded")
		em.Complete("ignored")
		return "", context.DeadlineExceeded
	}

	w := env.do("POST", "/api/ai/generate-v3", map[string]string{"artistName": "A", "songTitle": "B"}, token)

	body := w.Body.String()
	if !strings.Contains(body, "event:error") || !strings.Contains(body, "quota exceeded") {
		t.Errorf("Expected an error event, got:\n%s", body)
	}
}

func TestGenerate_RequiresToken(t *testing.T) {
	env := setupTestRouter()

	w := env.do("POST", "/api/ai/generate-v3", map[string]string{"artistName": "A", "songTitle": "B"}, "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
	if len(env.desk.Requests) != 0 {
		t.Error("Desk must not run without a token")
	}
}
