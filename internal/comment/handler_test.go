package comment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dharohar/dharohar/internal/guard"
	"github.com/dharohar/dharohar/internal/session"
	"github.com/dharohar/dharohar/internal/token"
	"github.com/dharohar/dharohar/internal/user"
	"github.com/dharohar/dharohar/internal/yatra"
)

type fakeRepo struct {
	comments    map[string]*Comment
	deleteCalls int
}

func (f *fakeRepo) Create(_ context.Context, yatraID, authorID, body string) (*Comment, error) {
	c := &Comment{PublicID: "c-new", YatraID: yatraID, AuthorID: authorID, Body: body, CreatedAt: time.Now()}
	f.comments[c.PublicID] = c
	return c, nil
}

func (f *fakeRepo) GetByPublicID(_ context.Context, publicID string) (*Comment, error) {
	if c, ok := f.comments[publicID]; ok {
		return c, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) ListByYatra(_ context.Context, yatraID string) ([]Comment, error) {
	var out []Comment
	for _, c := range f.comments {
		if c.YatraID == yatraID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeRepo) Delete(_ context.Context, publicID string) error {
	f.deleteCalls++
	if _, ok := f.comments[publicID]; !ok {
		return ErrNotFound
	}
	delete(f.comments, publicID)
	return nil
}

type fakeYatras struct {
	known map[string]bool
}

func (f *fakeYatras) GetByPublicID(_ context.Context, publicID string) (*yatra.Yatra, error) {
	if f.known[publicID] {
		return &yatra.Yatra{PublicID: publicID}, nil
	}
	return nil, yatra.ErrNotFound
}

type noUsers struct{}

func (noUsers) GetByID(context.Context, string) (*user.User, error) {
	return nil, user.ErrNotFound
}

func newTestHandler(t *testing.T) (http.Handler, *fakeRepo, *session.Manager) {
	t.Helper()
	codec, err := token.NewCodec("test-secret-key", 7*24*time.Hour, "dharohar")
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	sessions := session.NewManager(codec, session.NewCookieStore("session", 7*24*time.Hour, false), zap.NewNop())
	gate := guard.New(sessions, noUsers{}, zap.NewNop())

	repo := &fakeRepo{comments: map[string]*Comment{
		"c-1": {PublicID: "c-1", YatraID: "y-1", AuthorID: "user-1", Body: "lovely stepwell"},
	}}
	handler := NewHandler(repo, &fakeYatras{known: map[string]bool{"y-1": true}}, gate, zap.NewNop())

	r := chi.NewRouter()
	r.Mount("/api/comments", handler.Routes())
	r.Route("/api/yatras/{yatraID}/comments", func(r chi.Router) {
		r.Mount("/", handler.NestedRoutes())
	})
	return r, repo, sessions
}

func cookieFor(t *testing.T, sessions *session.Manager, sub string, role user.Role) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := sessions.Create(rec, sub, sub+"@example.com", role); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return rec.Result().Cookies()[0]
}

func TestDeleteRequiresOwnership(t *testing.T) {
	router, repo, sessions := newTestHandler(t)

	r := httptest.NewRequest(http.MethodDelete, "/api/comments/c-1", nil)
	r.AddCookie(cookieFor(t, sessions, "user-2", user.RoleUser))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("stranger delete: expected 403, got %d", rec.Code)
	}
	if repo.deleteCalls != 0 {
		t.Fatalf("delete must not reach the repo, got %d calls", repo.deleteCalls)
	}
}

func TestDeleteByOwner(t *testing.T) {
	router, repo, sessions := newTestHandler(t)

	r := httptest.NewRequest(http.MethodDelete, "/api/comments/c-1", nil)
	r.AddCookie(cookieFor(t, sessions, "user-1", user.RoleUser))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("owner delete: expected 204, got %d", rec.Code)
	}
	if repo.deleteCalls != 1 {
		t.Fatalf("expected one repo delete, got %d", repo.deleteCalls)
	}
}

func TestDeleteByAdminBypassesOwnership(t *testing.T) {
	router, _, sessions := newTestHandler(t)

	r := httptest.NewRequest(http.MethodDelete, "/api/comments/c-1", nil)
	r.AddCookie(cookieFor(t, sessions, "admin-1", user.RoleAdmin))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin delete: expected 204, got %d", rec.Code)
	}
}

func TestDeleteAnonymous(t *testing.T) {
	router, repo, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/comments/c-1", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if repo.deleteCalls != 0 {
		t.Fatal("anonymous request must not reach the repo")
	}
}

func TestCreateOnUnknownYatra(t *testing.T) {
	router, _, sessions := newTestHandler(t)

	r := httptest.NewRequest(http.MethodPost, "/api/yatras/y-missing/comments/", strings.NewReader(`{"body":"hello"}`))
	r.Header.Set("Content-Type", "application/json")
	r.AddCookie(cookieFor(t, sessions, "user-1", user.RoleUser))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreateAndList(t *testing.T) {
	router, _, sessions := newTestHandler(t)

	r := httptest.NewRequest(http.MethodPost, "/api/yatras/y-1/comments/", strings.NewReader(`{"body":"hello"}`))
	r.Header.Set("Content-Type", "application/json")
	r.AddCookie(cookieFor(t, sessions, "user-1", user.RoleUser))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/yatras/y-1/comments/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "hello") {
		t.Fatalf("list should contain the new comment: %s", rec.Body.String())
	}
}
