package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/gin-gonic/gin"
	"github.com/mohamedaliSwe/mimi-style/internal/adapters/db/memory"
	"github.com/mohamedaliSwe/mimi-style/internal/adapters/db/postgres"
	"github.com/mohamedaliSwe/mimi-style/internal/adapters/mail"
	"github.com/mohamedaliSwe/mimi-style/internal/adapters/storage"
	"github.com/mohamedaliSwe/mimi-style/internal/app/auth/jwt"
	"github.com/mohamedaliSwe/mimi-style/internal/app/auth/password"
	authsvc "github.com/mohamedaliSwe/mimi-style/internal/app/auth/service"
	catalogsvc "github.com/mohamedaliSwe/mimi-style/internal/app/catalog/service"
	"github.com/mohamedaliSwe/mimi-style/internal/app/validation"
	"github.com/mohamedaliSwe/mimi-style/internal/domain/store/model"
	"github.com/mohamedaliSwe/mimi-style/internal/infra/config"
	"github.com/mohamedaliSwe/mimi-style/internal/infra/metrics"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type mailbox struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *mailbox) Dispatch(msg mail.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
}

func (m *mailbox) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type server struct {
	router *gin.Engine
	db     *gorm.DB
	mails  *mailbox
	fs     afero.Fs
}

func newServer(t *testing.T, checks ...HealthCheck) server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Category{}, &model.Product{},
		&model.ProductImage{}, &model.CartItem{}, &model.Order{},
	))

	cfg := &config.Config{
		JWTSecretKey:    "test-secret",
		Issuer:          "test",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		EmailTokenTTL:   time.Hour,
		AppBaseURL:      "http://shop.test",
		AdminEmails:     []string{"boss@x.com"},
		TelephoneRegion: "KE",
	}
	util, err := jwt.NewJWTUtil(cfg)
	require.NoError(t, err)
	fast := &argon2id.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

	v := validation.New()
	catalogRepo := postgres.NewPostgresCatalogRepo(db)
	s := server{db: db, mails: &mailbox{}, fs: afero.NewMemMapFs()}

	auth := authsvc.New(postgres.NewPostgresUserRepo(db), memory.NewRevocationRepo(cfg.RefreshTokenTTL),
		util, password.NewHasher("", fast), s.mails, cfg, v, zap.NewNop())
	catalog := catalogsvc.New(catalogRepo, catalogRepo, catalogRepo,
		storage.NewFSStore(s.fs, "uploads"), v, zap.NewNop())

	s.router = NewRouter(auth, catalog, metrics.New(), RouterConfig{Health: checks}, zap.NewNop())
	return s
}

type reply struct {
	code int
	body map[string]any
	raw  []byte
}

func (s server) do(t *testing.T, method, path, token string, body any) reply {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return s.serve(t, req, token)
}

func (s server) serve(t *testing.T, req *http.Request, token string) reply {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	r := reply{code: rec.Code, raw: rec.Body.Bytes()}
	_ = json.Unmarshal(r.raw, &r.body)
	return r
}

func (s server) verificationToken(t *testing.T, email string) string {
	t.Helper()
	var u model.User
	require.NoError(t, s.db.Where("email = ?", email).First(&u).Error)
	require.NotNil(t, u.VerificationToken)
	return *u.VerificationToken
}

// session signs up, verifies and logs in, returning the access and refresh tokens.
func (s server) session(t *testing.T, email, username, phone string) (string, string) {
	t.Helper()
	r := s.do(t, "POST", "/api/auth/signup", "", map[string]string{
		"username": username, "email": email, "telephone": phone,
		"password": "p", "password_confirmation": "p",
	})
	require.Equal(t, http.StatusCreated, r.code, string(r.raw))

	r = s.do(t, "GET", "/api/auth/verify/"+s.verificationToken(t, email), "", nil)
	require.Equal(t, http.StatusOK, r.code, string(r.raw))

	r = s.do(t, "POST", "/api/auth/login", "", map[string]string{"email": email, "password": "p"})
	require.Equal(t, http.StatusOK, r.code, string(r.raw))
	return r.body["access_token"].(string), r.body["refresh_token"].(string)
}

/* ───────────────────────────── auth ───────────────────────────── */

func TestAuthFlow(t *testing.T) {
	s := newServer(t)

	r := s.do(t, "POST", "/api/auth/signup", "", map[string]string{
		"username": "a", "email": "a@x.com", "telephone": "1",
		"password": "p", "password_confirmation": "p",
	})
	require.Equal(t, http.StatusCreated, r.code)
	require.Equal(t, 1, s.mails.count())
	user := r.body["user"].(map[string]any)
	require.Equal(t, false, user["is_verified"])
	require.NotContains(t, string(r.raw), "password")

	r = s.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "p"})
	require.Equal(t, http.StatusForbidden, r.code)
	require.Equal(t, "Account not verified", r.body["message"])

	r = s.do(t, "GET", "/api/auth/verify/"+s.verificationToken(t, "a@x.com"), "", nil)
	require.Equal(t, http.StatusOK, r.code)

	r = s.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "p"})
	require.Equal(t, http.StatusOK, r.code)
	access := r.body["access_token"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, r.body["refresh_token"])
	require.Equal(t, "Bearer", r.body["token_type"])

	r = s.do(t, "GET", "/api/auth/profile", access, nil)
	require.Equal(t, http.StatusOK, r.code)
	require.Equal(t, "a@x.com", r.body["email"])

	r = s.do(t, "POST", "/api/auth/logout", access, nil)
	require.Equal(t, http.StatusOK, r.code)

	r = s.do(t, "GET", "/api/auth/profile", access, nil)
	require.Equal(t, http.StatusUnauthorized, r.code)
	require.Equal(t, "Token has been revoked", r.body["message"])
}

func TestSignup_Errors(t *testing.T) {
	s := newServer(t)
	s.session(t, "a@x.com", "a", "1")

	cases := []struct {
		name string
		body map[string]string
		msg  string
	}{
		{"missing username", map[string]string{"email": "b@x.com"}, "username is required"},
		{"mismatch", map[string]string{
			"username": "b", "email": "b@x.com", "telephone": "2",
			"password": "p", "password_confirmation": "q",
		}, "Passwords do not match"},
		{"duplicate email", map[string]string{
			"username": "b", "email": "a@x.com", "telephone": "2",
			"password": "p", "password_confirmation": "p",
		}, "Email already registered"},
		{"duplicate username", map[string]string{
			"username": "a", "email": "b@x.com", "telephone": "2",
			"password": "p", "password_confirmation": "p",
		}, "User exists"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := s.do(t, "POST", "/api/auth/signup", "", tc.body)
			require.Equal(t, http.StatusBadRequest, r.code)
			require.Equal(t, tc.msg, r.body["message"])
		})
	}

	req := httptest.NewRequest("POST", "/api/auth/signup", bytes.NewBufferString("{not json"))
	r := s.serve(t, req, "")
	require.Equal(t, http.StatusBadRequest, r.code)
	require.Equal(t, "Invalid request body", r.body["message"])
}

func TestLogin_Errors(t *testing.T) {
	s := newServer(t)
	s.session(t, "a@x.com", "a", "1")

	r := s.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "nobody@x.com", "password": "p"})
	require.Equal(t, http.StatusBadRequest, r.code)
	require.Equal(t, "Email not registered", r.body["message"])

	r = s.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "wrong"})
	require.Equal(t, http.StatusBadRequest, r.code)
	require.Equal(t, "Incorrect password", r.body["message"])
}

func TestVerify_UnknownToken(t *testing.T) {
	s := newServer(t)
	r := s.do(t, "GET", "/api/auth/verify/nope", "", nil)
	require.Equal(t, http.StatusBadRequest, r.code)
}

func TestRefresh(t *testing.T) {
	s := newServer(t)
	_, refresh := s.session(t, "a@x.com", "a", "1")

	r := s.do(t, "POST", "/api/auth/refresh", "", map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, r.code)
	access := r.body["access_token"].(string)

	r = s.do(t, "GET", "/api/auth/profile", access, nil)
	require.Equal(t, http.StatusOK, r.code)

	// header form
	r = s.do(t, "POST", "/api/auth/refresh", refresh, nil)
	require.Equal(t, http.StatusOK, r.code)

	// an access token is not a refresh token
	r = s.do(t, "POST", "/api/auth/refresh", access, nil)
	require.Equal(t, http.StatusUnauthorized, r.code)
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	s := newServer(t)
	access, refresh := s.session(t, "a@x.com", "a", "1")

	r := s.do(t, "POST", "/api/auth/logout", access, map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, r.code)

	r = s.do(t, "POST", "/api/auth/refresh", "", map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusUnauthorized, r.code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newServer(t)
	for _, route := range [][2]string{
		{"GET", "/api/auth/profile"},
		{"PUT", "/api/auth/profile"},
		{"DELETE", "/api/auth/profile"},
		{"POST", "/api/auth/logout"},
		{"PUT", "/api/auth/password/change"},
	} {
		r := s.do(t, route[0], route[1], "", nil)
		require.Equal(t, http.StatusUnauthorized, r.code, route[1])
		require.Equal(t, "Missing access token", r.body["message"])
	}

	r := s.do(t, "GET", "/api/auth/profile", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, r.code)
}

func TestProfile_UpdateAndDelete(t *testing.T) {
	s := newServer(t)
	access, _ := s.session(t, "a@x.com", "a", "1")
	s.session(t, "b@x.com", "b", "2")

	r := s.do(t, "PUT", "/api/auth/profile", access, map[string]string{"address": "Nairobi"})
	require.Equal(t, http.StatusOK, r.code)
	require.Equal(t, "Nairobi", r.body["user"].(map[string]any)["address"])

	r = s.do(t, "PUT", "/api/auth/profile", access, map[string]string{"email": "b@x.com"})
	require.Equal(t, http.StatusBadRequest, r.code)
	require.Equal(t, "Email already registered", r.body["message"])

	r = s.do(t, "DELETE", "/api/auth/profile", access, nil)
	require.Equal(t, http.StatusOK, r.code)

	r = s.do(t, "GET", "/api/auth/profile", access, nil)
	require.Equal(t, http.StatusUnauthorized, r.code)
}

func TestPasswordChangeAndReset(t *testing.T) {
	s := newServer(t)
	access, _ := s.session(t, "a@x.com", "a", "1")

	r := s.do(t, "PUT", "/api/auth/password/change", access, map[string]string{
		"old_password": "p", "new_password": "n", "password_confirmation": "n",
	})
	require.Equal(t, http.StatusOK, r.code, string(r.raw))

	sent := s.mails.count()
	r = s.do(t, "POST", "/api/auth/password/forget", "", map[string]string{"email": "nobody@x.com"})
	require.Equal(t, http.StatusOK, r.code)
	msg := r.body["message"]
	require.Equal(t, sent, s.mails.count())

	r = s.do(t, "POST", "/api/auth/password/forget", "", map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, r.code)
	require.Equal(t, msg, r.body["message"])
	require.Equal(t, sent+1, s.mails.count())

	var u model.User
	require.NoError(t, s.db.Where("email = ?", "a@x.com").First(&u).Error)
	require.NotNil(t, u.ResetToken)

	r = s.do(t, "POST", "/api/auth/password/reset/unknown", "", map[string]string{
		"password": "r", "password_confirmation": "r",
	})
	require.Equal(t, http.StatusNotFound, r.code)
	require.Equal(t, "Invalid reset token", r.body["message"])

	r = s.do(t, "POST", "/api/auth/password/reset/unknown", "", nil)
	require.Equal(t, http.StatusNotFound, r.code)

	r = s.do(t, "POST", "/api/auth/password/reset/"+*u.ResetToken, "", map[string]string{})
	require.Equal(t, http.StatusBadRequest, r.code)
	require.Equal(t, "password is required", r.body["message"])

	r = s.do(t, "POST", "/api/auth/password/reset/"+*u.ResetToken, "", map[string]string{
		"password": "r", "password_confirmation": "r",
	})
	require.Equal(t, http.StatusOK, r.code)

	r = s.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "r"})
	require.Equal(t, http.StatusOK, r.code)
}

/* ───────────────────────────── catalog ───────────────────────────── */

func TestCatalog_MutationsNeedAdmin(t *testing.T) {
	s := newServer(t)
	customer, _ := s.session(t, "a@x.com", "a", "1")

	r := s.do(t, "POST", "/api/categories", "", map[string]string{"name": "shoes"})
	require.Equal(t, http.StatusUnauthorized, r.code)

	r = s.do(t, "POST", "/api/categories", customer, map[string]string{"name": "shoes"})
	require.Equal(t, http.StatusForbidden, r.code)

	r = s.do(t, "GET", "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, r.code)
}

func upload(t *testing.T, productID, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("product_id", productID))
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/product-images", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestCatalog_AdminFlow(t *testing.T) {
	s := newServer(t)
	admin, _ := s.session(t, "boss@x.com", "boss", "9")

	r := s.do(t, "POST", "/api/categories", admin, map[string]string{"name": "  Shoes "})
	require.Equal(t, http.StatusCreated, r.code, string(r.raw))
	require.Equal(t, "shoes", r.body["name"])
	catID := r.body["id"].(string)

	r = s.do(t, "POST", "/api/categories", admin, map[string]string{"name": "shoes"})
	require.Equal(t, http.StatusBadRequest, r.code)
	require.Equal(t, "Category already exists", r.body["message"])

	r = s.do(t, "GET", "/api/categories/not-a-uuid", "", nil)
	require.Equal(t, http.StatusBadRequest, r.code)
	require.Equal(t, "Invalid category", r.body["message"])

	for i, name := range []string{"boot", "sandal", "slipper"} {
		r = s.do(t, "POST", "/api/products", admin, map[string]any{
			"product_name": name, "current_price": 10, "in_stock": 3,
			"flash_sale": i == 0, "category_id": catID,
		})
		require.Equal(t, http.StatusCreated, r.code, string(r.raw))
	}
	productID := r.body["id"].(string)

	r = s.do(t, "POST", "/api/products", admin, map[string]any{
		"product_name": "boot", "current_price": 10, "category_id": catID,
	})
	require.Equal(t, http.StatusBadRequest, r.code)

	r = s.do(t, "POST", "/api/products", admin, map[string]any{
		"product_name": "x", "current_price": -1, "category_id": catID,
	})
	require.Equal(t, http.StatusBadRequest, r.code)
	require.Equal(t, "current_price must be greater than or equal to 0", r.body["message"])

	r = s.do(t, "GET", "/api/categories/"+catID+"/products?page=1&per_page=2", "", nil)
	require.Equal(t, http.StatusOK, r.code)
	require.EqualValues(t, 3, r.body["total"])
	require.EqualValues(t, 2, r.body["pages"])
	require.Len(t, r.body["products"], 2)

	r = s.do(t, "GET", "/api/products/flash-sale", "", nil)
	require.Equal(t, http.StatusOK, r.code)
	var flash []map[string]any
	require.NoError(t, json.Unmarshal(r.raw, &flash))
	require.Len(t, flash, 1)

	r = s.do(t, "PUT", "/api/products/"+productID, admin, map[string]any{"in_stock": 7})
	require.Equal(t, http.StatusOK, r.code)
	require.EqualValues(t, 7, r.body["in_stock"])

	r = s.serve(t, upload(t, productID, "pic.png", []byte("png")), admin)
	require.Equal(t, http.StatusCreated, r.code, string(r.raw))
	imageID := r.body["id"].(string)

	r = s.serve(t, upload(t, productID, "evil.exe", []byte("x")), admin)
	require.Equal(t, http.StatusBadRequest, r.code)
	require.Equal(t, "Invalid file or file type not allowed", r.body["message"])

	r = s.do(t, "GET", "/api/product-images/image/"+imageID, "", nil)
	require.Equal(t, http.StatusOK, r.code)

	r = s.do(t, "GET", "/api/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, r.code)
	require.Len(t, r.body["images"], 1)

	r = s.do(t, "DELETE", "/api/categories/"+catID, admin, nil)
	require.Equal(t, http.StatusBadRequest, r.code)
	require.Equal(t, "Category still has products", r.body["message"])

	r = s.do(t, "DELETE", "/api/products/"+productID, admin, nil)
	require.Equal(t, http.StatusOK, r.code)

	r = s.do(t, "GET", "/api/products/"+productID, "", nil)
	require.Equal(t, http.StatusNotFound, r.code)
	r = s.do(t, "GET", "/api/product-images/image/"+imageID, "", nil)
	require.Equal(t, http.StatusNotFound, r.code)
	files, err := afero.ReadDir(s.fs, "uploads")
	require.NoError(t, err)
	require.Empty(t, files)
}

/* ───────────────────────────── misc ───────────────────────────── */

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t, HealthCheck{Name: "db", Ping: func(context.Context) error { return nil }})
	r := s.do(t, "GET", "/health", "", nil)
	require.Equal(t, http.StatusOK, r.code)
	require.Equal(t, "ok", r.body["status"])

	r = s.do(t, "GET", "/api/welcome", "", nil)
	require.Equal(t, http.StatusOK, r.code)

	r = s.do(t, "GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, r.code)
	require.Contains(t, string(r.raw), "mimi_http_requests_total")

	s = newServer(t, HealthCheck{Name: "redis", Ping: func(context.Context) error { return errors.New("down") }})
	r = s.do(t, "GET", "/health", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, r.code)
	require.Equal(t, "down", r.body["checks"].(map[string]any)["redis"])
}

func TestStatusOf(t *testing.T) {
	require.Equal(t, http.StatusInternalServerError, statusOf(errors.New("boom")))
	require.Equal(t, http.StatusBadRequest, statusOf(errBadBody))
	require.Equal(t, http.StatusNotFound, statusOf(errBadProductID))
	require.Equal(t, http.StatusUnauthorized, statusOf(errNoSession))
}
