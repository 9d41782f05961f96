package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"yatube/config"
	"yatube/internal/database/dbtest"
	"yatube/internal/middleware"
	"yatube/internal/model"
	"yatube/internal/service"
	"yatube/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "Secret-pass-1"

type testApp struct {
	t    *testing.T
	deps *Deps
	srv  *httptest.Server
}

type client struct {
	app  *testApp
	http *http.Client
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.JWTSecret = "test-secret"
	cfg.LocalStoragePath = t.TempDir()
	old := config.AppConfig
	config.AppConfig = cfg
	t.Cleanup(func() { config.AppConfig = old })

	fs, err := storage.NewLocalStorage(cfg.LocalStoragePath, cfg.MediaURL)
	require.NoError(t, err)

	deps := NewDeps(dbtest.New(t), fs, cfg)
	r, err := NewRouter(deps)
	require.NoError(t, err)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testApp{t: t, deps: deps, srv: srv}
}

func (a *testApp) user(username string) *model.User {
	a.t.Helper()
	u := &model.User{Username: username, Email: username + "@example.com", PasswordHash: testPassword}
	require.NoError(a.t, a.deps.Users.Register(context.Background(), u))
	return u
}

func (a *testApp) admin(username string) *model.User {
	a.t.Helper()
	u, err := a.deps.Users.CreateAdmin(context.Background(), username, username+"@example.com", testPassword)
	require.NoError(a.t, err)
	return u
}

func (a *testApp) group(slug string) *model.Group {
	a.t.Helper()
	g := &model.Group{Title: "Group " + slug, Slug: slug, Description: "about " + slug}
	require.NoError(a.t, a.deps.Admin.CreateGroup(context.Background(), g))
	return g
}

func (a *testApp) post(author *model.User, text string, group *model.Group) *model.Post {
	a.t.Helper()
	in := service.PostInput{Text: text}
	if group != nil {
		in.GroupID = &group.ID
	}
	p, err := a.deps.Community.CreatePost(context.Background(), author, in)
	require.NoError(a.t, err)
	return p
}

func (a *testApp) client() *client {
	jar, err := cookiejar.New(nil)
	require.NoError(a.t, err)
	return &client{app: a, http: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (c *client) do(req *http.Request) (*http.Response, string) {
	c.app.t.Helper()
	resp, err := c.http.Do(req)
	require.NoError(c.app.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.app.t, err)
	return resp, string(body)
}

func (c *client) get(path string) (*http.Response, string) {
	req, err := http.NewRequest(http.MethodGet, c.app.srv.URL+path, nil)
	require.NoError(c.app.t, err)
	return c.do(req)
}

func (c *client) csrfToken() string {
	u, _ := url.Parse(c.app.srv.URL)
	for _, ck := range c.http.Jar.Cookies(u) {
		if ck.Name == middleware.CSRFCookie {
			return ck.Value
		}
	}
	c.get("/auth/login/")
	for _, ck := range c.http.Jar.Cookies(u) {
		if ck.Name == middleware.CSRFCookie {
			return ck.Value
		}
	}
	c.app.t.Fatal("no csrf cookie")
	return ""
}

func (c *client) post(path string, form url.Values) (*http.Response, string) {
	if form == nil {
		form = url.Values{}
	}
	form.Set(middleware.CSRFFormField, c.csrfToken())
	req, err := http.NewRequest(http.MethodPost, c.app.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(c.app.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) login(username string) *client {
	resp, _ := c.post("/auth/login/", url.Values{"username": {username}, "password": {testPassword}})
	require.Equal(c.app.t, http.StatusFound, resp.StatusCode)
	return c
}

func (c *client) api(method, path, token string, body any) (*http.Response, string) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.app.t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.app.srv.URL+path, r)
	require.NoError(c.app.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req)
}

func TestPublicPages(t *testing.T) {
	app := newTestApp(t)
	author := app.user("leo")
	g := app.group("test")
	p := app.post(author, "Hello group", g)
	anon := app.client()

	for _, path := range []string{"/", "/group/test/", "/profile/leo/", fmt.Sprintf("/posts/%d/", p.ID)} {
		resp, body := anon.get(path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, body, "Hello group", path)
	}

	resp, _ := anon.get("/group/missing/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = anon.get("/profile/ghost/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = anon.get("/posts/999/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = anon.get("/posts/abc/")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// 登录用户访问不存在的帖子同样是 404
	app.user("mia")
	mia := app.client().login("mia")
	for _, path := range []string{"/posts/999/", "/posts/999/edit/"} {
		resp, body := mia.get(path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Contains(t, body, path, path)
	}

	resp, body := anon.get("/unexisting_page/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "/unexisting_page/")
}

func TestAnonymousRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)
	author := app.user("leo")
	p := app.post(author, "text", nil)
	anon := app.client()

	for _, path := range []string{"/create/", "/follow/", fmt.Sprintf("/posts/%d/edit/", p.ID), "/profile/leo/follow/"} {
		resp, _ := anon.get(path)
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/auth/login/?next="+path, resp.Header.Get("Location"), path)
	}

	resp, _ := anon.post(fmt.Sprintf("/posts/%d/comment/", p.ID), url.Values{"text": {"hi"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/auth/login/?next="))
}

func TestCreateAndEditPost(t *testing.T) {
	app := newTestApp(t)
	leo := app.user("leo")
	app.user("mia")
	g := app.group("test")

	c := app.client().login("leo")
	resp, body := c.get("/create/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Group test")

	resp, _ = c.post("/create/", url.Values{"text": {"Brand new post"}, "group": {fmt.Sprint(g.ID)}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/profile/leo/", resp.Header.Get("Location"))

	feed, err := app.deps.Community.ProfileFeed(context.Background(), "leo", "1", nil)
	require.NoError(t, err)
	require.Len(t, feed.Feed.Posts, 1)
	created := feed.Feed.Posts[0]
	assert.Equal(t, leo.ID, created.AuthorID)
	assert.Equal(t, g.ID, *created.GroupID)

	// 空文本重新渲染表单，不创建帖子
	resp, body = c.post("/create/", url.Values{"text": {""}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "This field is required.")

	editPath := fmt.Sprintf("/posts/%d/edit/", created.ID)
	resp, body = c.get(editPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Brand new post")

	resp, _ = c.post(editPath, url.Values{"text": {"Edited text"}, "group": {""}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", created.ID), resp.Header.Get("Location"))

	edited, err := app.deps.Community.GetPost(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited text", edited.Text)
	assert.Nil(t, edited.GroupID)
	assert.Equal(t, created.PubDate.Unix(), edited.PubDate.Unix())

	// 非作者编辑被静默跳回作者主页
	other := app.client().login("mia")
	resp, _ = other.get(editPath)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/profile/leo/", resp.Header.Get("Location"))
	resp, _ = other.post(editPath, url.Values{"text": {"Hijacked"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/profile/leo/", resp.Header.Get("Location"))

	unchanged, err := app.deps.Community.GetPost(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited text", unchanged.Text)
}

func TestCreatePostWithImage(t *testing.T) {
	app := newTestApp(t)
	app.user("leo")
	c := app.client().login("leo")

	gif := []byte{
		0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00, 0x01, 0x00, 0x80, 0x00,
		0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00, 0x02, 0x00, 0x01, 0x00,
		0x00, 0x02, 0x02, 0x0C, 0x0A, 0x00, 0x3B,
	}
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("text", "Post with image"))
	require.NoError(t, w.WriteField(middleware.CSRFFormField, c.csrfToken()))
	part, err := w.CreateFormFile("image", "small.gif")
	require.NoError(t, err)
	_, err = part.Write(gif)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, app.srv.URL+"/create/", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, _ := c.do(req)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	feed, err := app.deps.Community.IndexFeed(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, feed.Posts, 1)
	image := feed.Posts[0].Image
	assert.True(t, strings.HasPrefix(image, "/media/posts/"), image)

	resp, data := app.client().get(image)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(gif), data)

	_, page := app.client().get("/profile/leo/")
	assert.Contains(t, page, `<img src="`+image)
}

func TestComments(t *testing.T) {
	app := newTestApp(t)
	leo := app.user("leo")
	app.user("mia")
	p := app.post(leo, "Commented post", nil)
	path := fmt.Sprintf("/posts/%d/", p.ID)

	c := app.client().login("mia")
	resp, _ := c.post(path+"comment/", url.Values{"text": {"Nice post!"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, path, resp.Header.Get("Location"))

	// 空评论被丢弃
	resp, _ = c.post(path+"comment/", url.Values{"text": {""}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	_, body := app.client().get(path)
	assert.Contains(t, body, "Nice post!")
	n, err := app.deps.Admin.GetSystemStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n.TotalComments)
}

func TestFollowFeed(t *testing.T) {
	app := newTestApp(t)
	app.user("reader")
	author := app.user("author")
	stranger := app.user("stranger")
	app.post(author, "Followed author post", nil)
	app.post(stranger, "Stranger post", nil)

	reader := app.client().login("reader")
	_, body := reader.get("/follow/")
	assert.NotContains(t, body, "Followed author post")

	for i := 0; i < 2; i++ {
		resp, _ := reader.get("/profile/author/follow/")
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/profile/author/", resp.Header.Get("Location"))
	}
	// 关注自己不生效
	reader.get("/profile/reader/follow/")

	stats, err := app.deps.Admin.GetSystemStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalFollows)

	_, body = reader.get("/follow/")
	assert.Contains(t, body, "Followed author post")
	assert.NotContains(t, body, "Stranger post")

	_, body = reader.get("/profile/author/")
	assert.Contains(t, body, "/profile/author/unfollow/")

	// 未关注任何人的用户看不到这些帖子
	app.user("lonely")
	_, body = app.client().login("lonely").get("/follow/")
	assert.NotContains(t, body, "Followed author post")

	reader.get("/profile/author/unfollow/")
	reader.get("/profile/author/unfollow/")
	_, body = reader.get("/follow/")
	assert.NotContains(t, body, "Followed author post")
}

var postCard = regexp.MustCompile(`<article class="post">`)

func TestPagination(t *testing.T) {
	app := newTestApp(t)
	author := app.user("leo")
	g := app.group("test")
	for i := 0; i < 13; i++ {
		app.post(author, fmt.Sprintf("Post number %d", i), g)
	}
	anon := app.client()

	for _, base := range []string{"/group/test/", "/profile/leo/"} {
		_, body := anon.get(base)
		assert.Len(t, postCard.FindAllString(body, -1), 10, base)
		assert.Contains(t, body, "Post number 12")

		_, body = anon.get(base + "?page=2")
		assert.Len(t, postCard.FindAllString(body, -1), 3, base)
		assert.Contains(t, body, "Post number 0")

		_, body = anon.get(base + "?page=abc")
		assert.Len(t, postCard.FindAllString(body, -1), 10, base)

		_, body = anon.get(base + "?page=99")
		assert.Len(t, postCard.FindAllString(body, -1), 3, base)
	}
}

func TestIndexCache(t *testing.T) {
	app := newTestApp(t)
	author := app.user("leo")
	app.post(author, "First post", nil)
	anon := app.client()

	resp, body := anon.get("/")
	assert.Equal(t, "MISS", resp.Header.Get(middleware.CacheHeader))
	assert.Contains(t, body, "First post")

	app.post(author, "Cached away", nil)
	resp, body = anon.get("/")
	assert.Equal(t, "HIT", resp.Header.Get(middleware.CacheHeader))
	assert.NotContains(t, body, "Cached away")

	app.deps.PageCache.Purge()
	_, body = anon.get("/")
	assert.Contains(t, body, "Cached away")
}

func TestCSRFRequired(t *testing.T) {
	app := newTestApp(t)
	app.user("leo")
	c := app.client().login("leo")

	req, err := http.NewRequest(http.MethodPost, app.srv.URL+"/create/", strings.NewReader("text=no+token"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, body := c.do(req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body, "CSRF verification failed")
}

func TestSignupLoginLogout(t *testing.T) {
	app := newTestApp(t)
	c := app.client()

	resp, _ := c.post("/auth/signup/", url.Values{
		"first_name": {"Leo"}, "last_name": {"Tolstoy"}, "username": {"leo"},
		"email": {"leo@example.com"}, "password1": {testPassword}, "password2": {testPassword},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	c.login("leo")
	_, body := c.get("/profile/leo/")
	assert.Contains(t, body, "Leo Tolstoy")
	assert.Contains(t, body, "/auth/logout/")

	resp, _ = c.get("/auth/logout/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = c.get("/create/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestAdminAPI(t *testing.T) {
	app := newTestApp(t)
	app.admin("boss")
	author := app.user("leo")
	g := app.group("doomed")
	p := app.post(author, "Survivor", g)
	c := app.client()

	token := func(email string) string {
		resp, body := c.api(http.MethodPost, "/api/auth/token", "", gin.H{"email": email, "password": testPassword})
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		var out struct {
			Data struct {
				Token string `json:"token"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &out))
		return out.Data.Token
	}
	admin := token("boss@example.com")
	userToken := token("leo@example.com")

	resp, _ := c.api(http.MethodGet, "/api/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = c.api(http.MethodGet, "/api/admin/stats", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := c.api(http.MethodPost, "/api/admin/groups", admin, gin.H{"title": "Cats", "slug": "bad slug", "description": "d"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	resp, body = c.api(http.MethodPost, "/api/admin/groups", admin, gin.H{"title": "Cats", "slug": "cats", "description": "d"})
	assert.Equal(t, http.StatusOK, resp.StatusCode, body)
	resp, _ = c.api(http.MethodPost, "/api/admin/groups", admin, gin.H{"title": "Cats", "slug": "cats", "description": "d"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = c.api(http.MethodDelete, "/api/admin/groups/doomed", admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	kept, err := app.deps.Community.GetPost(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.GroupID)

	resp, body = c.api(http.MethodGet, "/api/admin/stats", admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"total_posts":1`)

	resp, _ = c.api(http.MethodPost, "/api/admin/cache/purge", admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = c.api(http.MethodDelete, "/api/admin/users/leo", admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = c.api(http.MethodDelete, fmt.Sprintf("/api/admin/posts/%d", p.ID), admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = c.api(http.MethodGet, "/api/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
