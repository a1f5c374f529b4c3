package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/biztrack/internal/assistant"
	"github.com/MrJamesThe3rd/biztrack/internal/auth"
	docmemory "github.com/MrJamesThe3rd/biztrack/internal/docstore/memory"
	"github.com/MrJamesThe3rd/biztrack/internal/export"
	bizhttp "github.com/MrJamesThe3rd/biztrack/internal/http"
	httpassistant "github.com/MrJamesThe3rd/biztrack/internal/http/assistant"
	httpauth "github.com/MrJamesThe3rd/biztrack/internal/http/auth"
	httpexport "github.com/MrJamesThe3rd/biztrack/internal/http/export"
	"github.com/MrJamesThe3rd/biztrack/internal/http/importcsv"
	"github.com/MrJamesThe3rd/biztrack/internal/http/notification"
	"github.com/MrJamesThe3rd/biztrack/internal/http/preference"
	httpproject "github.com/MrJamesThe3rd/biztrack/internal/http/project"
	httpreport "github.com/MrJamesThe3rd/biztrack/internal/http/report"
	httptx "github.com/MrJamesThe3rd/biztrack/internal/http/transaction"
	"github.com/MrJamesThe3rd/biztrack/internal/importer"
	prefsmemory "github.com/MrJamesThe3rd/biztrack/internal/prefs/memory"
	projectstore "github.com/MrJamesThe3rd/biztrack/internal/project/store"
	"github.com/MrJamesThe3rd/biztrack/internal/session"
	txstore "github.com/MrJamesThe3rd/biztrack/internal/transaction/store"
)

var now = time.Date(2024, time.June, 12, 15, 0, 0, 0, time.Local)

type answererFunc func(ctx context.Context, req assistant.Request) (string, error)

func (f answererFunc) Answer(ctx context.Context, req assistant.Request) (string, error) {
	return f(ctx, req)
}

type server struct {
	t       *testing.T
	handler http.Handler
}

func newServer(t *testing.T) *server {
	t.Helper()

	docs := docmemory.New()
	prefs := prefsmemory.New()

	authSvc := auth.NewService(docs, auth.WithBcryptCost(bcrypt.MinCost))
	tokens := auth.NewTokens("test-secret", time.Hour)

	manager := session.NewManager(session.Deps{
		Projects:     projectstore.New(docs),
		Transactions: txstore.New(docs),
		Prefs:        prefs,
		Now:          func() time.Time { return now },
	})
	authSvc.Subscribe(manager.HandleUserChanged)

	answerer := answererFunc(func(_ context.Context, req assistant.Request) (string, error) {
		return fmt.Sprintf("You have %d transactions in %s", len(req.Transactions), req.Currency), nil
	})

	handler := bizhttp.New(bizhttp.Handlers{
		Auth:          httpauth.NewHandler(authSvc, tokens),
		Projects:      httpproject.NewHandler(),
		Transactions:  httptx.NewHandler(),
		Reports:       httpreport.NewHandler(),
		Export:        httpexport.NewHandler(export.NewService(nil)),
		Import:        importcsv.NewHandler(importer.NewService()),
		Assistant:     httpassistant.NewHandler(assistant.NewService(answerer)),
		Preferences:   preference.NewHandler(prefs),
		Notifications: notification.NewHandler(),
	}, bizhttp.Options{
		Tokens:         tokens,
		Users:          authSvc,
		Sessions:       manager,
		AllowedOrigins: []string{"*"},
	})

	return &server{t: t, handler: handler}
}

func (s *server) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)

		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	return rec
}

func (s *server) signUp(email string) string {
	s.t.Helper()

	rec := s.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":       email,
		"password":    "correct horse",
		"displayName": "Ada",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(s.t, resp.Token)

	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

func TestAuthRoutes(t *testing.T) {
	srv := newServer(t)
	token := srv.signUp("ada@example.com")

	type args struct {
		method string
		path   string
		token  string
		body   any
	}

	type testCase struct {
		name     string
		args     args
		want     int
		wantCode string
	}

	tests := []testCase{
		{
			name: "Duplicate email",
			args: args{method: http.MethodPost, path: "/api/v1/auth/signup", body: map[string]string{"email": "ADA@example.com", "password": "12345678", "displayName": "x"}},
			want: http.StatusConflict, wantCode: "email-already-in-use",
		},
		{
			name: "Weak password",
			args: args{method: http.MethodPost, path: "/api/v1/auth/signup", body: map[string]string{"email": "bob@example.com", "password": "short", "displayName": "Bob"}},
			want: http.StatusBadRequest, wantCode: "weak-password",
		},
		{
			name: "Invalid email",
			args: args{method: http.MethodPost, path: "/api/v1/auth/signup", body: map[string]string{"email": "bob", "password": "12345678", "displayName": "Bob"}},
			want: http.StatusBadRequest, wantCode: "invalid-email",
		},
		{
			name: "Wrong password",
			args: args{method: http.MethodPost, path: "/api/v1/auth/signin", body: map[string]string{"email": "ada@example.com", "password": "wrong password"}},
			want: http.StatusUnauthorized, wantCode: "invalid-credential",
		},
		{
			name: "Unknown user",
			args: args{method: http.MethodPost, path: "/api/v1/auth/signin", body: map[string]string{"email": "nobody@example.com", "password": "12345678"}},
			want: http.StatusNotFound, wantCode: "user-not-found",
		},
		{
			name: "Sign in",
			args: args{method: http.MethodPost, path: "/api/v1/auth/signin", body: map[string]string{"email": "ada@example.com", "password": "correct horse"}},
			want: http.StatusOK,
		},
		{
			name: "Me without token",
			args: args{method: http.MethodGet, path: "/api/v1/auth/me"},
			want: http.StatusUnauthorized,
		},
		{
			name: "Me with garbage token",
			args: args{method: http.MethodGet, path: "/api/v1/auth/me", token: "garbage"},
			want: http.StatusUnauthorized,
		},
		{
			name: "Me",
			args: args{method: http.MethodGet, path: "/api/v1/auth/me", token: token},
			want: http.StatusOK,
		},
		{
			name: "Rename",
			args: args{method: http.MethodPatch, path: "/api/v1/auth/me", token: token, body: map[string]string{"displayName": "Ada L."}},
			want: http.StatusOK,
		},
		{
			name: "Rename to blank",
			args: args{method: http.MethodPatch, path: "/api/v1/auth/me", token: token, body: map[string]string{"displayName": " "}},
			want: http.StatusBadRequest, wantCode: "missing-display-name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(tt.args.method, tt.args.path, tt.args.token, tt.args.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())

			if tt.wantCode != "" {
				body := decode[map[string]string](t, rec)
				assert.Equal(t, tt.wantCode, body["code"])
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestProjectAndTransactionFlow(t *testing.T) {
	srv := newServer(t)
	token := srv.signUp("ada@example.com")

	rec := srv.do(http.MethodGet, "/api/v1/transactions", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "no active project yet")

	rec = srv.do(http.MethodPost, "/api/v1/projects", token, map[string]any{"name": "Bakery", "currency": "eur"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	bakery := decode[map[string]any](t, rec)
	assert.Equal(t, "EUR", bakery["currency"])
	assert.Equal(t, "business", bakery["type"])

	rec = srv.do(http.MethodPost, "/api/v1/projects", token, map[string]any{"name": "Bad", "currency": "NOPE"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodPost, "/api/v1/transactions", token, map[string]any{"type": "expense", "name": "Flour", "amount": "50", "date": "2024-06-01", "category": "stock"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	flour := decode[map[string]any](t, rec)
	assert.Equal(t, "stock", flour["category"])

	rec = srv.do(http.MethodPost, "/api/v1/transactions", token, map[string]any{"type": "cash-in", "name": "Sale", "amount": 200, "date": "2024-06-03"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(http.MethodPost, "/api/v1/transactions", token, map[string]any{"type": "cash-in", "name": "Sale", "amount": 1, "date": "2024-06-03", "category": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "category only applies to expenses")

	rec = srv.do(http.MethodPost, "/api/v1/transactions", token, map[string]any{"type": "refund", "name": "x", "amount": 1, "date": "2024-06-03"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodPatch, "/api/v1/transactions/"+flour["id"].(string), token, map[string]any{"type": "asset"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "kind is immutable")

	rec = srv.do(http.MethodPatch, "/api/v1/transactions/"+flour["id"].(string), token, map[string]any{"note": "bulk"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "bulk", decode[map[string]any](t, rec)["note"])

	rec = srv.do(http.MethodGet, "/api/v1/transactions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]map[string]any](t, rec)
	require.Len(t, history, 2)
	assert.Equal(t, "Sale", history[0]["name"], "newest first")

	rec = srv.do(http.MethodGet, "/api/v1/transactions?kind=expense", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = srv.do(http.MethodGet, "/api/v1/reports/summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[map[string]any](t, rec)
	assert.Equal(t, "200", summary["income"])
	assert.Equal(t, "50", summary["expenses"])
	assert.Equal(t, "150", summary["net"])

	rec = srv.do(http.MethodGet, "/api/v1/reports?filter=range&start=2024-06-01&end=2024-06-07", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	full := decode[map[string]any](t, rec)
	trend := full["trend"].(map[string]any)
	assert.Equal(t, "day", trend["granularity"])
	assert.Len(t, trend["buckets"], 7)

	rec = srv.do(http.MethodGet, "/api/v1/transactions?kind=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodGet, "/api/v1/export", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="BizTrack_Bakery_Export_2024-06-12.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Date,Name,Type,Amount,Currency,Note\n"+
		"2024-06-03,\"Sale\",cash-in,200.00,EUR,\"\"\n"+
		"2024-06-01,\"Flour\",expense,50.00,EUR,\"bulk\"\n", rec.Body.String())

	rec = srv.do(http.MethodGet, "/api/v1/export/summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[map[string]any](t, rec)["summary"], "2024-06-03 | Sale | +€200.00")

	rec = srv.do(http.MethodPost, "/api/v1/assistant/ask", token, map[string]any{"question": "How many?"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "You have 2 transactions in EUR", decode[map[string]any](t, rec)["answer"])

	rec = srv.do(http.MethodPost, "/api/v1/assistant/ask", token, map[string]any{"question": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodDelete, "/api/v1/transactions/"+flour["id"].(string), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(http.MethodDelete, "/api/v1/transactions/"+flour["id"].(string), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notes := decode[map[string]any](t, rec)
	assert.NotEmpty(t, notes["notifications"])
	assert.Equal(t, false, notes["busy"])
}

func TestProjectSwitchAndCascade(t *testing.T) {
	srv := newServer(t)
	token := srv.signUp("ada@example.com")

	rec := srv.do(http.MethodPost, "/api/v1/projects", token, map[string]any{"name": "One"})
	require.Equal(t, http.StatusCreated, rec.Code)
	one := decode[map[string]any](t, rec)

	rec = srv.do(http.MethodPost, "/api/v1/projects", token, map[string]any{"name": "Two", "activate": true})
	require.Equal(t, http.StatusCreated, rec.Code)
	two := decode[map[string]any](t, rec)

	rec = srv.do(http.MethodPost, "/api/v1/transactions", token, map[string]any{"type": "asset", "name": "Oven", "amount": 900, "date": "2024-06-01", "purchaseDate": "2024-05-30"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "2024-05-30", decode[map[string]any](t, rec)["purchaseDate"])

	rec = srv.do(http.MethodGet, "/api/v1/projects", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[map[string]any](t, rec)
	assert.Equal(t, two["id"], list["activeProjectId"])
	assert.Len(t, list["projects"], 2)

	rec = srv.do(http.MethodPut, "/api/v1/projects/active", token, map[string]any{"id": one["id"]})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodGet, "/api/v1/transactions", token, nil)
	assert.Empty(t, decode[[]map[string]any](t, rec), "project Two's transactions must not show in One")

	rec = srv.do(http.MethodPatch, "/api/v1/projects/"+two["id"].(string), token, map[string]any{"tracking": "cashflow"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "cashflow", decode[map[string]any](t, rec)["tracking"])

	rec = srv.do(http.MethodPut, "/api/v1/projects/active", token, map[string]any{"id": two["id"]})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodDelete, "/api/v1/projects/"+two["id"].(string), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(http.MethodGet, "/api/v1/projects", token, nil)
	list = decode[map[string]any](t, rec)
	assert.Equal(t, one["id"], list["activeProjectId"])
	assert.Len(t, list["projects"], 1)

	rec = srv.do(http.MethodDelete, "/api/v1/projects/"+two["id"].(string), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(http.MethodPut, "/api/v1/projects/active", token, map[string]any{"id": two["id"]})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsersAreIsolated(t *testing.T) {
	srv := newServer(t)
	ada := srv.signUp("ada@example.com")
	bob := srv.signUp("bob@example.com")

	rec := srv.do(http.MethodPost, "/api/v1/projects", ada, map[string]any{"name": "Ada's"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(http.MethodGet, "/api/v1/projects", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[map[string]any](t, rec)["projects"])
}

func TestImport(t *testing.T) {
	srv := newServer(t)
	token := srv.signUp("ada@example.com")

	rec := srv.do(http.MethodPost, "/api/v1/projects", token, map[string]any{"name": "Shop"})
	require.Equal(t, http.StatusCreated, rec.Code)

	upload := func(format, content string) *httptest.ResponseRecorder {
		var body bytes.Buffer

		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("format", format))

		part, err := mw.CreateFormFile("file", "export.csv")
		require.NoError(t, err)

		_, err = io.Copy(part, strings.NewReader(content))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/import", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)

		rec := httptest.NewRecorder()
		srv.handler.ServeHTTP(rec, req)

		return rec
	}

	rec = upload("", "Date,Name,Type,Amount,Currency,Note\n2024-06-03,\"Sale\",cash-in,200.00,USD,\"\"\n2024-06-01,\"Flour\",expense,50.00,USD,\"\"\n")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, 2, decode[map[string]any](t, rec)["imported"])

	rec = upload("ofx", "whatever")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload("", "Name,Amount\nx,1\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodGet, "/api/v1/transactions", token, nil)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)
}

func TestPreferences(t *testing.T) {
	srv := newServer(t)
	token := srv.signUp("ada@example.com")

	rec := srv.do(http.MethodGet, "/api/v1/preferences/currency", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "USD", decode[map[string]any](t, rec)["currency"])

	rec = srv.do(http.MethodPut, "/api/v1/preferences/currency", token, map[string]any{"currency": "gbp"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GBP", decode[map[string]any](t, rec)["currency"])

	rec = srv.do(http.MethodPut, "/api/v1/preferences/currency", token, map[string]any{"currency": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodGet, "/api/v1/preferences/currency", token, nil)
	assert.Equal(t, "GBP", decode[map[string]any](t, rec)["currency"])
}

func TestSignOutClosesSession(t *testing.T) {
	srv := newServer(t)
	token := srv.signUp("ada@example.com")

	rec := srv.do(http.MethodPost, "/api/v1/projects", token, map[string]any{"name": "Shop"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(http.MethodPost, "/api/v1/auth/signout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The token stays valid until it expires; the session is reopened from the store.
	rec = srv.do(http.MethodGet, "/api/v1/projects", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string]any](t, rec)["projects"], 1)
}
