package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"pureplay/pkg/account"
	"pureplay/pkg/auth"
	"pureplay/pkg/database"
	"pureplay/pkg/oembed"
	"pureplay/pkg/store"
	"pureplay/pkg/videos"
)

type envelope struct {
	Success bool            `json:"success"`
	Value   json.RawMessage `json:"value"`
	Error   string          `json:"error"`
}

func newTestAPI(t *testing.T, name, oembedBody string, oembedStatus int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(oembedStatus)
		w.Write([]byte(oembedBody))
	}))
	t.Cleanup(srv.Close)

	db, err := database.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	issuer := auth.NewIssuer("test-secret", "pureplay", "pureplay-clients", 1)
	users := store.NewUsers(db)
	accountSvc := account.NewService(users)
	videoSvc := videos.NewService(users, store.NewVideos(db), oembed.NewClient(srv.URL, 5*time.Second), nil)

	authHandler := NewAuthHandler(accountSvc, issuer)
	videoHandler := NewVideoHandler(videoSvc)

	r := gin.New()
	r.Use(CORS())
	v1 := r.Group("/v1")
	v1.POST("/Auth/Register", authHandler.Register)
	v1.POST("/Auth/Login/Email", authHandler.LoginEmail)

	protected := v1.Group("", auth.Middleware(issuer))
	protected.POST("/Auth/CheckPassword", authHandler.CheckPassword)
	protected.POST("/Auth/ResetPassword", authHandler.ResetPassword)

	ytv := protected.Group("/YTV")
	ytv.POST("/AddYTV", videoHandler.Add)
	ytv.GET("/GetAllYTV", videoHandler.GetAll)
	ytv.GET("/GetbyIdYTV/:id", videoHandler.GetByID)
	ytv.DELETE("/DeleteYTV/:id", videoHandler.Delete)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope from %q: %v", w.Body.String(), err)
		}
	}
	return w.Code, env
}

func register(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	code, env := do(t, r, http.MethodPost, "/v1/Auth/Register", "", gin.H{"email": email, "password": password})
	if code != http.StatusOK || !env.Success {
		t.Fatalf("register %s: code=%d env=%+v", email, code, env)
	}
	var out struct {
		Email string `json:"email"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Value, &out); err != nil {
		t.Fatalf("decode register value: %v", err)
	}
	if out.Token == "" {
		t.Fatalf("no token issued")
	}
	return out.Token
}

func TestFullScenario(t *testing.T) {
	r := newTestAPI(t, "apifull", `{"title":"T","author_name":"A","thumbnail_url":"th"}`, http.StatusOK)

	register(t, r, "alice@x.com", "pw1secure")

	// Login returns a fresh token.
	code, env := do(t, r, http.MethodPost, "/v1/Auth/Login/Email", "", gin.H{"email": "alice@x.com", "password": "pw1secure"})
	if code != http.StatusOK || !env.Success {
		t.Fatalf("login: code=%d env=%+v", code, env)
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Value, &login); err != nil || login.Token == "" {
		t.Fatalf("login token: %v", err)
	}
	tokenA := login.Token

	// Add a video; the stored row carries the resolved metadata.
	code, env = do(t, r, http.MethodPost, "/v1/YTV/AddYTV", tokenA, gin.H{"YTVUrl": "https://youtube.com/watch?v=abc"})
	if code != http.StatusOK || !env.Success {
		t.Fatalf("add: code=%d env=%+v", code, env)
	}
	var added struct {
		ID           uint   `json:"id"`
		Title        string `json:"title"`
		AuthorName   string `json:"authorName"`
		ThumbnailURL string `json:"thumbnailUrl"`
		URL          string `json:"url"`
	}
	if err := json.Unmarshal(env.Value, &added); err != nil {
		t.Fatalf("decode video: %v", err)
	}
	if added.Title != "T" || added.AuthorName != "A" || added.ThumbnailURL != "th" || added.URL != "https://youtube.com/watch?v=abc" {
		t.Fatalf("unexpected projection: %+v", added)
	}
	// The projection never leaks the owner.
	var raw map[string]interface{}
	if err := json.Unmarshal(env.Value, &raw); err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	for _, k := range []string{"UserID", "user_id", "userId"} {
		if _, leaked := raw[k]; leaked {
			t.Fatalf("owner id leaked under %q: %v", k, raw)
		}
	}

	// Re-adding the same URL is a duplicate.
	code, env = do(t, r, http.MethodPost, "/v1/YTV/AddYTV", tokenA, gin.H{"YTVUrl": "https://youtube.com/watch?v=abc"})
	if code != http.StatusBadRequest || env.Success {
		t.Fatalf("expected duplicate failure, code=%d env=%+v", code, env)
	}

	// Exactly one entry in the list.
	code, env = do(t, r, http.MethodGet, "/v1/YTV/GetAllYTV", tokenA, nil)
	if code != http.StatusOK || !env.Success {
		t.Fatalf("list: code=%d env=%+v", code, env)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(env.Value, &list); err != nil || len(list) != 1 {
		t.Fatalf("expected one video, got %s (err %v)", env.Value, err)
	}

	// Delete it, then the list is empty.
	code, env = do(t, r, http.MethodDelete, fmt.Sprintf("/v1/YTV/DeleteYTV/%d", added.ID), tokenA, nil)
	if code != http.StatusOK || !env.Success {
		t.Fatalf("delete: code=%d env=%+v", code, env)
	}
	code, env = do(t, r, http.MethodGet, "/v1/YTV/GetAllYTV", tokenA, nil)
	if code != http.StatusOK || !env.Success {
		t.Fatalf("list after delete: code=%d env=%+v", code, env)
	}
	if err := json.Unmarshal(env.Value, &list); err != nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %s", env.Value)
	}

	// Deleting again is NotFound, not a crash.
	code, env = do(t, r, http.MethodDelete, fmt.Sprintf("/v1/YTV/DeleteYTV/%d", added.ID), tokenA, nil)
	if code != http.StatusNotFound || env.Success {
		t.Fatalf("expected 404 on second delete, code=%d env=%+v", code, env)
	}
}

func TestRegister_DuplicateNeverIssuesToken(t *testing.T) {
	r := newTestAPI(t, "apidup", `{}`, http.StatusOK)

	register(t, r, "alice@x.com", "pw1secure")

	code, env := do(t, r, http.MethodPost, "/v1/Auth/Register", "", gin.H{"email": "alice@x.com", "password": "otherpw"})
	if code != http.StatusBadRequest || env.Success {
		t.Fatalf("expected duplicate email failure, code=%d env=%+v", code, env)
	}
	if len(env.Value) != 0 {
		t.Fatalf("failure must not carry a token: %s", env.Value)
	}
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	r := newTestAPI(t, "apicross", `{"title":"T"}`, http.StatusOK)

	tokenA := register(t, r, "alice@x.com", "pw1secure")
	tokenB := register(t, r, "bob@x.com", "pw2secure")

	code, env := do(t, r, http.MethodPost, "/v1/YTV/AddYTV", tokenA, gin.H{"YTVUrl": "https://youtube.com/watch?v=abc"})
	if code != http.StatusOK {
		t.Fatalf("add: code=%d env=%+v", code, env)
	}
	var added struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(env.Value, &added); err != nil {
		t.Fatalf("decode: %v", err)
	}

	code, env = do(t, r, http.MethodGet, fmt.Sprintf("/v1/YTV/GetbyIdYTV/%d", added.ID), tokenB, nil)
	if code != http.StatusNotFound || env.Success {
		t.Fatalf("bob must not read alice's video: code=%d env=%+v", code, env)
	}
	if len(env.Value) != 0 {
		t.Fatalf("not-found response leaked a value: %s", env.Value)
	}

	code, _ = do(t, r, http.MethodGet, fmt.Sprintf("/v1/YTV/GetbyIdYTV/%d", added.ID), tokenA, nil)
	if code != http.StatusOK {
		t.Fatalf("owner read failed: code=%d", code)
	}
}

func TestMetadataFailurePersistsNothing(t *testing.T) {
	r := newTestAPI(t, "apimeta", `not found`, http.StatusNotFound)

	tokenA := register(t, r, "alice@x.com", "pw1secure")

	code, env := do(t, r, http.MethodPost, "/v1/YTV/AddYTV", tokenA, gin.H{"YTVUrl": "https://youtube.com/watch?v=abc"})
	if code != http.StatusBadRequest || env.Success {
		t.Fatalf("expected metadata failure, code=%d env=%+v", code, env)
	}

	code, env = do(t, r, http.MethodGet, "/v1/YTV/GetAllYTV", tokenA, nil)
	if code != http.StatusOK {
		t.Fatalf("list: code=%d", code)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(env.Value, &list); err != nil || len(list) != 0 {
		t.Fatalf("expected unaffected empty list, got %s", env.Value)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestAPI(t, "apiauth", `{}`, http.StatusOK)

	paths := []struct {
		method, path string
	}{
		{http.MethodPost, "/v1/YTV/AddYTV"},
		{http.MethodGet, "/v1/YTV/GetAllYTV"},
		{http.MethodGet, "/v1/YTV/GetbyIdYTV/1"},
		{http.MethodDelete, "/v1/YTV/DeleteYTV/1"},
		{http.MethodPost, "/v1/Auth/CheckPassword"},
		{http.MethodPost, "/v1/Auth/ResetPassword"},
	}
	for _, p := range paths {
		code, env := do(t, r, p.method, p.path, "", nil)
		if code != http.StatusUnauthorized || env.Success {
			t.Fatalf("%s %s: expected 401, got %d", p.method, p.path, code)
		}
	}
}

func TestCheckAndResetPassword(t *testing.T) {
	r := newTestAPI(t, "apipw", `{}`, http.StatusOK)

	tokenA := register(t, r, "alice@x.com", "pw1secure")

	code, env := do(t, r, http.MethodPost, "/v1/Auth/CheckPassword", tokenA, gin.H{"password": "wrong"})
	if code != http.StatusBadRequest || env.Success {
		t.Fatalf("expected wrong password failure, code=%d", code)
	}

	code, env = do(t, r, http.MethodPost, "/v1/Auth/CheckPassword", tokenA, gin.H{"password": "pw1secure"})
	if code != http.StatusOK || !env.Success {
		t.Fatalf("check password: code=%d env=%+v", code, env)
	}
	var check struct {
		ReauthToken string `json:"reauthToken"`
	}
	if err := json.Unmarshal(env.Value, &check); err != nil || check.ReauthToken == "" {
		t.Fatalf("expected reauth token, got %s", env.Value)
	}
	// The re-auth token is not a session token.
	code, _ = do(t, r, http.MethodGet, "/v1/YTV/GetAllYTV", check.ReauthToken, nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("reauth token accepted as session token: code=%d", code)
	}

	code, env = do(t, r, http.MethodPost, "/v1/Auth/ResetPassword", tokenA,
		gin.H{"currentPassword": "pw1secure", "newPassword": "pw2secure"})
	if code != http.StatusOK || !env.Success {
		t.Fatalf("reset: code=%d env=%+v", code, env)
	}

	code, _ = do(t, r, http.MethodPost, "/v1/Auth/Login/Email", "", gin.H{"email": "alice@x.com", "password": "pw1secure"})
	if code != http.StatusBadRequest {
		t.Fatalf("old password still works: code=%d", code)
	}
	code, _ = do(t, r, http.MethodPost, "/v1/Auth/Login/Email", "", gin.H{"email": "alice@x.com", "password": "pw2secure"})
	if code != http.StatusOK {
		t.Fatalf("new password rejected: code=%d", code)
	}
}
