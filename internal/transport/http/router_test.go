package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	stdhttp "net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"workfolio/internal/cache"
	"workfolio/internal/config"
	"workfolio/internal/handler"
	"workfolio/internal/httputil"
	"workfolio/internal/model"
	"workfolio/internal/service"
	"workfolio/internal/testutil"
	authmw "workfolio/internal/transport/http/middleware"
)

const testPassword = "hunter22"

type testApp struct {
	srv    *httptest.Server
	router stdhttp.Handler
	store  *testutil.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := zap.NewNop()
	store := testutil.NewStore()
	users, portfolios, comments, jobs := store.Users(), store.Portfolios(), store.Comments(), store.Jobs()

	consistency := service.NewConsistencyManager(users, portfolios, comments, jobs, store.Inconsistencies(), &testutil.Publisher{}, log)
	cfg := &config.Config{SessionSecret: "router-test-secret", SessionMaxAge: 3600}
	sessions := authmw.NewSessions(
		service.NewSessionService(cache.NewSessionStore(rdb, log), users, cfg, log), false, log)

	handlers := handler.New(handler.Deps{
		Sessions:   sessions,
		Log:        log,
		Users:      service.NewUserService(users, portfolios, service.NewCredentialStore(), consistency, log),
		Portfolios: service.NewPortfolioService(portfolios, comments, users, consistency, log),
		Comments:   service.NewCommentService(comments, portfolios, consistency, log),
		Jobs:       service.NewJobService(jobs, consistency, log),
	})
	router := NewRouter(RouterConfig{
		Handlers:  handlers,
		Sessions:  sessions,
		Ownership: authmw.NewOwnership(service.NewAuthorizer(users, portfolios, comments, jobs, log), sessions, log),
		Log:       log,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testApp{srv: srv, router: router, store: store}
}

// browser keeps cookies and stops at every redirect.
func (a *testApp) browser(t *testing.T) *stdhttp.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &stdhttp.Client{
		Jar: jar,
		CheckRedirect: func(*stdhttp.Request, []*stdhttp.Request) error {
			return stdhttp.ErrUseLastResponse
		},
	}
}

func (a *testApp) do(t *testing.T, c *stdhttp.Client, method, path string, form url.Values) *stdhttp.Response {
	t.Helper()
	body := strings.NewReader("")
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := stdhttp.NewRequest(method, a.srv.URL+path, body)
	require.NoError(t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (a *testApp) signup(t *testing.T, c *stdhttp.Client, username string) {
	t.Helper()
	resp := a.do(t, c, stdhttp.MethodPost, "/signup", url.Values{
		"username":    {username},
		"password":    {testPassword},
		"phoneNumber": {"555-0100"},
	})
	require.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func (a *testApp) userID(t *testing.T, username string) int64 {
	t.Helper()
	u, err := a.store.Users().GetByUsername(context.Background(), username)
	require.NoError(t, err)
	return u.ID
}

func decodePage(t *testing.T, resp *stdhttp.Response) httputil.Page {
	t.Helper()
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	var page httputil.Page
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	return page
}

func decodeError(t *testing.T, resp *stdhttp.Response) httputil.ErrorResponse {
	t.Helper()
	var body httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func assertForbidden(t *testing.T, resp *stdhttp.Response) {
	t.Helper()
	assert.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Equal(t, httputil.ErrCodeForbidden, decodeError(t, resp).Code)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, app.browser(t), stdhttp.MethodGet, "/health", nil)

	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestRequireAuth_RedirectsToLoginWithFlash(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)

	resp := app.do(t, c, stdhttp.MethodGet, "/", nil)
	assert.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	page := decodePage(t, app.do(t, c, stdhttp.MethodGet, "/login", nil))
	assert.Equal(t, "login", page.View)
	assert.Equal(t, []string{"You must be logged in to see this page."}, page.Infos)

	// Flashes are shown once.
	page = decodePage(t, app.do(t, c, stdhttp.MethodGet, "/login", nil))
	assert.Empty(t, page.Infos)
}

func TestRequireAuth_GuardsOwnershipRoutes(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, app.browser(t), "alice")

	resp := app.do(t, app.browser(t), stdhttp.MethodPatch, "/users/alice", url.Values{"phoneNumber": {"1"}})

	assert.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLogin_Flow(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, app.browser(t), "alice")
	c := app.browser(t)

	resp := app.do(t, c, stdhttp.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	assert.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	page := decodePage(t, app.do(t, c, stdhttp.MethodGet, "/login", nil))
	assert.Equal(t, []string{"Invalid username or password."}, page.Errors)

	resp = app.do(t, c, stdhttp.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {testPassword}})
	assert.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	page = decodePage(t, app.do(t, c, stdhttp.MethodGet, "/", nil))
	assert.Equal(t, "index", page.View)
	assert.Equal(t, []string{"You have been successfully signed in."}, page.Infos)

	resp = app.do(t, c, stdhttp.MethodGet, "/logout", nil)
	assert.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp = app.do(t, c, stdhttp.MethodGet, "/", nil)
	assert.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestSignup_DuplicateUsernameConflicts(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, app.browser(t), "alice")

	resp := app.do(t, app.browser(t), stdhttp.MethodPost, "/signup", url.Values{
		"username":    {"alice"},
		"password":    {"other"},
		"phoneNumber": {"555-0199"},
	})

	assert.Equal(t, stdhttp.StatusConflict, resp.StatusCode)
	assert.Equal(t, "/signup", resp.Header.Get("Location"))
	assert.Equal(t, httputil.ErrCodeConflict, decodeError(t, resp).Code)
}

func TestAccountUpdate_OtherUserForbidden(t *testing.T) {
	app := newTestApp(t)
	alice, bob := app.browser(t), app.browser(t)
	app.signup(t, alice, "alice")
	app.signup(t, bob, "bob")

	resp := app.do(t, bob, stdhttp.MethodPatch, "/users/alice", url.Values{"username": {"mallory"}})
	assertForbidden(t, resp)

	u, err := app.store.Users().GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "555-0100", u.PhoneNumber)

	page := decodePage(t, app.do(t, bob, stdhttp.MethodGet, "/", nil))
	assert.Contains(t, page.Errors, "You do not have permission to do that.")
}

func TestAccountUpdate_Owner(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)
	app.signup(t, c, "alice")

	resp := app.do(t, c, stdhttp.MethodPatch, "/users/alice", url.Values{"username": {"alicia"}})

	assert.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/users/alicia", resp.Header.Get("Location"))
	_, err := app.store.Users().GetByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestMethodOverride(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"upper case", "/users/alice?_method=PATCH"},
		{"lower case", "/users/alice?_method=patch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			c := app.browser(t)
			app.signup(t, c, "alice")

			resp := app.do(t, c, stdhttp.MethodPost, tt.path, url.Values{"phoneNumber": {"555-0111"}})

			assert.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
			u, err := app.store.Users().GetByUsername(context.Background(), "alice")
			require.NoError(t, err)
			assert.Equal(t, "555-0111", u.PhoneNumber)
		})
	}
}

func TestMethodOverride_BodyFieldIgnored(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)
	app.signup(t, c, "alice")

	resp := app.do(t, c, stdhttp.MethodPost, "/users/alice", url.Values{"_method": {"PATCH"}, "phoneNumber": {"1"}})

	assert.Equal(t, stdhttp.StatusMethodNotAllowed, resp.StatusCode)
	u, err := app.store.Users().GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "555-0100", u.PhoneNumber)
}

func TestMethodOverride_PlainPostNotRouted(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)
	app.signup(t, c, "alice")

	resp := app.do(t, c, stdhttp.MethodPost, "/users/alice", url.Values{"phoneNumber": {"1"}})

	assert.Equal(t, stdhttp.StatusMethodNotAllowed, resp.StatusCode)
}

func TestForm_OversizedBodyRejected(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)
	app.signup(t, c, "alice")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Huge"))
	require.NoError(t, mw.WriteField("description", strings.Repeat("x", 20<<20)))
	require.NoError(t, mw.Close())

	// Served in process so the whole body is offered to the handler.
	req := httptest.NewRequest(stdhttp.MethodPost, "/add", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	base, err := url.Parse(app.srv.URL)
	require.NoError(t, err)
	for _, cookie := range c.Jar.Cookies(base) {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, app.store.CountPortfolios(func(model.Portfolio) bool { return true }))
}

func TestPortfolioUpdate_SingleImageSlotKeepsOthers(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)
	app.signup(t, c, "alice")
	ctx := context.Background()

	resp := app.do(t, c, stdhttp.MethodPost, "/add", url.Values{
		"title":        {"Gallery"},
		"description":  {"shots"},
		"imageOfOne":   {"a.jpg"},
		"imageOfTwo":   {"b.jpg"},
		"imageOfThree": {"c.jpg"},
	})
	require.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)

	resp = app.do(t, c, stdhttp.MethodPatch, "/portfolios/Gallery", url.Values{"imageOfTwo": {"new.jpg"}})
	require.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)

	p, err := app.store.Portfolios().GetByTitle(ctx, "Gallery")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "new.jpg", "c.jpg"}, []string(p.Images))

	resp = app.do(t, c, stdhttp.MethodPatch, "/portfolios/Gallery", url.Values{"description": {"more shots"}})
	require.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)

	p, err = app.store.Portfolios().GetByTitle(ctx, "Gallery")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "new.jpg", "c.jpg"}, []string(p.Images))
}

func TestOwnership_CrossOwnerForbidden(t *testing.T) {
	app := newTestApp(t)
	alice, bob := app.browser(t), app.browser(t)
	app.signup(t, alice, "alice")
	app.signup(t, bob, "bob")
	ctx := context.Background()

	resp := app.do(t, alice, stdhttp.MethodPost, "/add", url.Values{
		"title":       {"Atlas"},
		"description": {"maps"},
		"tags":        {"go, sql"},
	})
	require.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/portfolios/Atlas", resp.Header.Get("Location"))

	resp = app.do(t, alice, stdhttp.MethodPost, "/portfolios/Atlas/add_comment", url.Values{"comment": {"first"}})
	require.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
	ids, err := app.store.Comments().ListIDsByAuthor(ctx, app.userID(t, "alice"))
	require.NoError(t, err)
	require.Len(t, ids, 1)
	commentPath := "/portfolios/Atlas/" + strconv.FormatInt(ids[0], 10)

	resp = app.do(t, alice, stdhttp.MethodPost, "/add_job", url.Values{
		"jobTitle":       {"Backend"},
		"companyName":    {"Acme"},
		"jobDescription": {"Build APIs"},
	})
	require.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)

	t.Run("portfolio", func(t *testing.T) {
		assertForbidden(t, app.do(t, bob, stdhttp.MethodPatch, "/portfolios/Atlas", url.Values{"description": {"mine"}}))
		p, err := app.store.Portfolios().GetByTitle(ctx, "Atlas")
		require.NoError(t, err)
		assert.Equal(t, "maps", p.Description)
	})

	t.Run("comment", func(t *testing.T) {
		assertForbidden(t, app.do(t, bob, stdhttp.MethodDelete, commentPath, nil))
		_, err := app.store.Comments().GetByID(ctx, ids[0])
		assert.NoError(t, err)
	})

	t.Run("job", func(t *testing.T) {
		assertForbidden(t, app.do(t, bob, stdhttp.MethodDelete, "/jobs/Backend", nil))
		_, err := app.store.Jobs().GetByTitle(ctx, "Backend")
		assert.NoError(t, err)
	})

	t.Run("profile", func(t *testing.T) {
		assertForbidden(t, app.do(t, bob, stdhttp.MethodGet, "/profiles/add_profile/alice", nil))
	})

	t.Run("owner may delete comment", func(t *testing.T) {
		resp := app.do(t, alice, stdhttp.MethodDelete, commentPath, nil)
		assert.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/portfolios/Atlas", resp.Header.Get("Location"))
		_, err := app.store.Comments().GetByID(ctx, ids[0])
		assert.ErrorIs(t, err, model.ErrCommentNotFound)
	})
}

func TestPortfolio_DuplicateTitleConflicts(t *testing.T) {
	app := newTestApp(t)
	alice, bob := app.browser(t), app.browser(t)
	app.signup(t, alice, "alice")
	app.signup(t, bob, "bob")
	form := url.Values{"title": {"Atlas"}, "description": {"maps"}}

	require.Equal(t, stdhttp.StatusSeeOther, app.do(t, alice, stdhttp.MethodPost, "/add", form).StatusCode)
	resp := app.do(t, bob, stdhttp.MethodPost, "/add", form)

	assert.Equal(t, stdhttp.StatusConflict, resp.StatusCode)
	assert.Equal(t, "/add", resp.Header.Get("Location"))
	assert.Equal(t, 1, app.store.CountPortfolios(func(model.Portfolio) bool { return true }))

	page := decodePage(t, app.do(t, bob, stdhttp.MethodGet, "/add", nil))
	assert.Equal(t, []string{"A portfolio with that title already exists."}, page.Errors)
}

func TestAccountDelete_CascadesAndLogsOut(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)
	app.signup(t, c, "alice")
	require.Equal(t, stdhttp.StatusSeeOther,
		app.do(t, c, stdhttp.MethodPost, "/add", url.Values{"title": {"Atlas"}, "description": {"maps"}}).StatusCode)

	resp := app.do(t, c, stdhttp.MethodPost, "/delete/alice?_method=DELETE", url.Values{})
	assert.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, err := app.store.Users().GetByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
	assert.Equal(t, 0, app.store.CountPortfolios(func(model.Portfolio) bool { return true }))

	page := decodePage(t, app.do(t, c, stdhttp.MethodGet, "/login", nil))
	assert.Equal(t, []string{"Your account and all related items have been deleted."}, page.Infos)

	resp = app.do(t, c, stdhttp.MethodGet, "/", nil)
	assert.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
}

func TestMedia_UploadsDisabled(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)
	app.signup(t, c, "alice")

	body := "--b\r\nContent-Disposition: form-data; name=\"image\"; filename=\"a.png\"\r\nContent-Type: image/png\r\n\r\nnot-a-png\r\n--b--\r\n"
	req, err := stdhttp.NewRequest(stdhttp.MethodPost, app.srv.URL+"/media/profile_image", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, model.CodeMediaDisabled, decodeError(t, resp).Code)
}
