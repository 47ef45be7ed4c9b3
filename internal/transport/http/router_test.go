package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coherentus/yatube/internal/auth"
	"github.com/coherentus/yatube/internal/config"
	"github.com/coherentus/yatube/internal/db"
	"github.com/coherentus/yatube/internal/models"
	"github.com/coherentus/yatube/internal/repository"
	"github.com/coherentus/yatube/internal/service"
	transport "github.com/coherentus/yatube/internal/transport/http"
)

// memStore replaces redis for both the detail cache and the session store.
type memStore struct{ data map[string][]byte }

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (m *memStore) SetJSON(ctx context.Context, key string, value interface{}) error {
	return m.SetJSONFor(ctx, key, value, 0)
}

func (m *memStore) SetJSONFor(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *memStore) Del(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// memIndex replaces elasticsearch with substring matching.
type memIndex struct{ docs map[uint]string }

func newMemIndex() *memIndex { return &memIndex{docs: map[uint]string{}} }

func (m *memIndex) IndexPost(_ context.Context, p *models.Post) error {
	m.docs[p.ID] = p.Text
	return nil
}

func (m *memIndex) SearchPostIDs(_ context.Context, query string) ([]uint, error) {
	var ids []uint
	for id, text := range m.docs {
		if strings.Contains(strings.ToLower(text), strings.ToLower(query)) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type env struct {
	router   transport.Router
	gorm     *gorm.DB
	auth     *auth.Service
	posts    *repository.PostRepository
	groups   *repository.GroupRepository
	users    *repository.UserRepository
	mediaDir string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	g, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, g.AutoMigrate(&models.User{}, &models.Group{}, &models.Post{}, &models.ActivityLog{}))

	database := &db.Database{Gorm: g}
	store := newMemStore()
	cfg := &config.Config{
		PageSize: 10,
		LoginURL: "/auth/login/",
		MediaDir: t.TempDir(),
	}
	authSvc := auth.NewService(repository.NewUserRepository(g), store, time.Hour)
	postSvc := service.NewPostService(database, store, newMemIndex())

	return &env{
		router:   transport.NewRouter(cfg, database, postSvc, authSvc),
		gorm:     g,
		auth:     authSvc,
		posts:    repository.NewPostRepository(g),
		groups:   repository.NewGroupRepository(g),
		users:    repository.NewUserRepository(g),
		mediaDir: cfg.MediaDir,
	}
}

func (e *env) signup(t *testing.T, username string) (*models.User, *http.Cookie) {
	t.Helper()
	ctx := context.Background()
	user, err := e.auth.Register(ctx, username+"@example.com", username, "sekret1")
	require.NoError(t, err)
	_, token, err := e.auth.Login(ctx, username, "sekret1")
	require.NoError(t, err)
	return user, &http.Cookie{Name: auth.SessionCookie, Value: token}
}

func (e *env) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) postForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) postCount(t *testing.T) int64 {
	t.Helper()
	n, err := e.posts.CountAll(context.Background())
	require.NoError(t, err)
	return n
}

func seedGroup(t *testing.T, e *env, title, slug string) *models.Group {
	t.Helper()
	g := &models.Group{Title: title, Slug: slug, Description: "d"}
	require.NoError(t, e.groups.Create(context.Background(), g))
	return g
}

func TestAnonymousWriteRedirectsToLogin(t *testing.T) {
	e := newEnv(t)

	w := e.get("/new/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next="+url.QueryEscape("/new/"), w.Header().Get("Location"))

	w = e.postForm("/new/", url.Values{"text": {"hello"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next="+url.QueryEscape("/new/"), w.Header().Get("Location"))
	assert.EqualValues(t, 0, e.postCount(t))
}

func TestCreatePost(t *testing.T) {
	e := newEnv(t)
	alice, cookie := e.signup(t, "alice")
	g1 := seedGroup(t, e, "First", "first")
	seedGroup(t, e, "Second", "second")

	w := e.postForm("/new/", url.Values{
		"text":  {"a brand new post"},
		"group": {fmt.Sprint(g1.ID)},
	}, cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.EqualValues(t, 1, e.postCount(t))

	posts, err := e.posts.ListAll(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, alice.ID, posts[0].AuthorID)
	assert.Equal(t, "a brand new post", posts[0].Text)

	// visible at the top of the timeline and the group page, absent elsewhere
	body := e.get("/", nil).Body.String()
	assert.Contains(t, body, "a brand new post")
	assert.Contains(t, e.get("/group/first/", nil).Body.String(), "a brand new post")
	assert.NotContains(t, e.get("/group/second/", nil).Body.String(), "a brand new post")
	assert.Contains(t, e.get("/alice/", nil).Body.String(), "a brand new post")
}

func TestCreatePostOrdering(t *testing.T) {
	e := newEnv(t)
	_, cookie := e.signup(t, "alice")

	e.postForm("/new/", url.Values{"text": {"older entry"}}, cookie)
	e.postForm("/new/", url.Values{"text": {"newer entry"}}, cookie)

	body := e.get("/", nil).Body.String()
	newer := strings.Index(body, "newer entry")
	older := strings.Index(body, "older entry")
	require.GreaterOrEqual(t, newer, 0)
	require.GreaterOrEqual(t, older, 0)
	assert.Less(t, newer, older)
}

func TestCreatePostInvalidForm(t *testing.T) {
	e := newEnv(t)
	_, cookie := e.signup(t, "alice")

	// blank text never writes
	w := e.postForm("/new/", url.Values{"text": {"   "}}, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Text is required.")
	assert.EqualValues(t, 0, e.postCount(t))

	// a reference to a group that does not exist never writes
	w = e.postForm("/new/", url.Values{"text": {"hello"}, "group": {"42"}}, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Unknown group.")
	assert.EqualValues(t, 0, e.postCount(t))
}

func TestCreatePostWithImage(t *testing.T) {
	e := newEnv(t)
	_, cookie := e.signup(t, "alice")

	var buf strings.Builder
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("text", "post with picture"))
	fw, err := mw.CreateFormFile("image", "pic.png")
	require.NoError(t, err)
	_, err = io.WriteString(fw, "not really a png")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/new/", strings.NewReader(buf.String()))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code)

	posts, err := e.posts.ListAll(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.NotEmpty(t, posts[0].Image)
	_, err = os.Stat(filepath.Join(e.mediaDir, filepath.FromSlash(posts[0].Image)))
	assert.NoError(t, err)
}

func TestPostDetail(t *testing.T) {
	e := newEnv(t)
	_, cookie := e.signup(t, "alice")
	e.postForm("/new/", url.Values{"text": {"the detail text"}}, cookie)

	posts, err := e.posts.ListAll(context.Background(), 0, 1)
	require.NoError(t, err)
	id := posts[0].ID

	w := e.get(fmt.Sprintf("/alice/%d/", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "the detail text")

	// the right id under the wrong username is not found
	e.signup(t, "bob")
	assert.Equal(t, http.StatusNotFound, e.get(fmt.Sprintf("/bob/%d/", id), nil).Code)
	assert.Equal(t, http.StatusNotFound, e.get("/alice/9999/", nil).Code)
}

func TestNotFoundPages(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusNotFound, e.get("/nobody/", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.get("/group/missing/", nil).Code)

	w := e.get("/no/such/path/at/all/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "404")
}

func TestEditAuthorization(t *testing.T) {
	e := newEnv(t)
	_, aliceCookie := e.signup(t, "alice")
	_, bobCookie := e.signup(t, "bob")

	e.postForm("/new/", url.Values{"text": {"original text"}}, aliceCookie)
	posts, err := e.posts.ListAll(context.Background(), 0, 1)
	require.NoError(t, err)
	post := posts[0]
	editPath := fmt.Sprintf("/alice/%d/edit/", post.ID)
	detailPath := fmt.Sprintf("/alice/%d/", post.ID)

	// anonymous editors go to login
	w := e.get(editPath, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next="+url.QueryEscape(editPath), w.Header().Get("Location"))

	// authenticated non-authors bounce to the detail page, nothing written
	w = e.postForm(editPath, url.Values{"text": {"hijacked"}}, bobCookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detailPath, w.Header().Get("Location"))

	got, err := e.posts.GetByAuthorAndID(context.Background(), "alice", post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original text", got.Text)
}

func TestEditByAuthor(t *testing.T) {
	e := newEnv(t)
	_, cookie := e.signup(t, "alice")
	g := seedGroup(t, e, "First", "first")

	e.postForm("/new/", url.Values{"text": {"original text"}}, cookie)
	posts, err := e.posts.ListAll(context.Background(), 0, 1)
	require.NoError(t, err)
	post := posts[0]
	editPath := fmt.Sprintf("/alice/%d/edit/", post.ID)

	// the prefilled form renders in edit mode
	w := e.get(editPath, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Edit post")
	assert.Contains(t, w.Body.String(), "original text")

	w = e.postForm(editPath, url.Values{
		"text":  {"edited text"},
		"group": {fmt.Sprint(g.ID)},
	}, cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/alice/%d/", post.ID), w.Header().Get("Location"))

	got, err := e.posts.GetByAuthorAndID(context.Background(), "alice", post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited text", got.Text)
	require.NotNil(t, got.GroupID)
	assert.Equal(t, g.ID, *got.GroupID)
	assert.Equal(t, post.ID, got.ID)
	assert.True(t, got.PubDate.Equal(post.PubDate))
	assert.EqualValues(t, 1, e.postCount(t))

	// invalid edits re-render and leave the post alone
	w = e.postForm(editPath, url.Values{"text": {""}}, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	got, err = e.posts.GetByAuthorAndID(context.Background(), "alice", post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited text", got.Text)
}

func TestTimelinePagination(t *testing.T) {
	e := newEnv(t)
	_, cookie := e.signup(t, "alice")
	for i := 0; i < 13; i++ {
		e.postForm("/new/", url.Values{"text": {fmt.Sprintf("entry number %d", i)}}, cookie)
	}

	first := e.get("/", nil).Body.String()
	assert.Equal(t, 10, strings.Count(first, "<li>"))

	second := e.get("/?page=2", nil).Body.String()
	assert.Equal(t, 3, strings.Count(second, "<li>"))

	// junk and out-of-range page numbers clamp instead of failing
	junk := e.get("/?page=abc", nil).Body.String()
	assert.Equal(t, 10, strings.Count(junk, "<li>"))
	far := e.get("/?page=999", nil).Body.String()
	assert.Equal(t, 3, strings.Count(far, "<li>"))
}

func TestGroupIndex(t *testing.T) {
	e := newEnv(t)
	seedGroup(t, e, "First", "first")
	seedGroup(t, e, "Second", "second")

	w := e.get("/group/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "First")
	assert.Contains(t, w.Body.String(), "Second")
}

func TestSearch(t *testing.T) {
	e := newEnv(t)
	_, cookie := e.signup(t, "alice")
	e.postForm("/new/", url.Values{"text": {"an essay about gophers"}}, cookie)
	e.postForm("/new/", url.Values{"text": {"unrelated musings"}}, cookie)

	w := e.get("/search/?q=gophers", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "an essay about gophers")
	assert.NotContains(t, w.Body.String(), "unrelated musings")
}

func TestLoginFlow(t *testing.T) {
	e := newEnv(t)
	_, err := e.auth.Register(context.Background(), "alice@example.com", "alice", "sekret1")
	require.NoError(t, err)

	// bad password re-renders the form, no session issued
	w := e.postForm("/auth/login/", url.Values{"username": {"alice"}, "password": {"wrong"}}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Wrong username or password.")

	// a good login honors the next parameter
	w = e.postForm("/auth/login/", url.Values{
		"username": {"alice"},
		"password": {"sekret1"},
		"next":     {"/new/"},
	}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/new/", w.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)

	w = e.get("/new/", sessionCookie)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAboutPages(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusOK, e.get("/about/author/", nil).Code)
	assert.Equal(t, http.StatusOK, e.get("/about/tech/", nil).Code)
}
