package handler

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/olegiv/gameatlas/internal/config"
	"github.com/olegiv/gameatlas/internal/covers"
	"github.com/olegiv/gameatlas/internal/middleware"
	"github.com/olegiv/gameatlas/internal/render"
	"github.com/olegiv/gameatlas/internal/service"
	"github.com/olegiv/gameatlas/internal/session"
	"github.com/olegiv/gameatlas/internal/store"
	"github.com/olegiv/gameatlas/internal/testutil"
	"github.com/olegiv/gameatlas/internal/version"
	"github.com/olegiv/gameatlas/web"
)

// testApp is a running storefront backed by a temporary database.
type testApp struct {
	t           *testing.T
	db          *sql.DB
	catalog     *service.Catalog
	credentials *service.Credentials
	staticDir   string
	server      *httptest.Server
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	cfg := &config.Config{
		SessionSecret: strings.Repeat("s3cr3t-", 6),
		Env:           "development",
		StaticDir:     t.TempDir(),
		MaxUploadMB:   1,
	}

	logger := testutil.TestLoggerSilent()
	state := session.NewState(scs.New())

	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("fs.Sub templates: %v", err)
	}
	assets, err := fs.Sub(web.Static, "static")
	if err != nil {
		t.Fatalf("fs.Sub static: %v", err)
	}

	renderer, err := render.New(render.Config{TemplatesFS: templates, State: state})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	creds, err := service.NewCredentials(db, logger, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewCredentials: %v", err)
	}
	catalog := service.NewCatalog(db, logger)

	lp := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	t.Cleanup(lp.Close)

	router := NewRouter(RouterConfig{
		Config:          cfg,
		DB:              db,
		State:           state,
		Renderer:        renderer,
		Credentials:     creds,
		Catalog:         catalog,
		Covers:          covers.NewProcessor(cfg.StaticDir),
		LoginProtection: lp,
		Logger:          logger,
		Version:         version.Info{Version: "v1.0.0"},
		Assets:          assets,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testApp{
		t:           t,
		db:          db,
		catalog:     catalog,
		credentials: creds,
		staticDir:   cfg.StaticDir,
		server:      srv,
	}
}

// testResponse is a fully read response.
type testResponse struct {
	Code     int
	Location string
	Body     string
	Header   http.Header
}

// testClient is a browser-like client with its own cookie jar that does not
// follow redirects.
type testClient struct {
	app    *testApp
	client *http.Client
}

func (a *testApp) newClient() *testClient {
	a.t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		a.t.Fatalf("cookiejar.New: %v", err)
	}
	return &testClient{
		app: a,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *testClient) do(req *http.Request) testResponse {
	c.app.t.Helper()
	resp, err := c.client.Do(req)
	if err != nil {
		c.app.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.app.t.Fatalf("reading body: %v", err)
	}
	return testResponse{
		Code:     resp.StatusCode,
		Location: resp.Header.Get("Location"),
		Body:     string(body),
		Header:   resp.Header,
	}
}

func (c *testClient) get(path string) testResponse {
	c.app.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.app.server.URL+path, nil)
	if err != nil {
		c.app.t.Fatalf("NewRequest: %v", err)
	}
	return c.do(req)
}

func (c *testClient) postForm(path string, values url.Values) testResponse {
	c.app.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.app.server.URL+path, strings.NewReader(values.Encode()))
	if err != nil {
		c.app.t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// testUpload is a file part of a multipart form.
type testUpload struct {
	Field    string
	Filename string
	Data     []byte
}

func (c *testClient) postMultipart(path string, values url.Values, upload *testUpload) testResponse {
	c.app.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, vals := range values {
		for _, v := range vals {
			if err := mw.WriteField(key, v); err != nil {
				c.app.t.Fatalf("WriteField: %v", err)
			}
		}
	}
	if upload != nil {
		part, err := mw.CreateFormFile(upload.Field, upload.Filename)
		if err != nil {
			c.app.t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := part.Write(upload.Data); err != nil {
			c.app.t.Fatalf("writing upload: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		c.app.t.Fatalf("closing multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.app.server.URL+path, &buf)
	if err != nil {
		c.app.t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

// createUser stores a user with the given password directly.
func (a *testApp) createUser(name, email, password string, admin bool) store.User {
	a.t.Helper()
	hash, err := a.credentials.HashPassword(password)
	if err != nil {
		a.t.Fatalf("HashPassword: %v", err)
	}
	user, err := a.credentials.Insert(context.Background(), service.NewUser{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      admin,
	})
	if err != nil {
		a.t.Fatalf("Insert user: %v", err)
	}
	return user
}

// login signs the client in and fails the test unless it succeeds.
func (c *testClient) login(email, password string) {
	c.app.t.Helper()
	resp := c.postForm(RouteLogin, url.Values{fieldEmail: {email}, fieldPassword: {password}})
	if resp.Code != http.StatusSeeOther || resp.Location != RouteRoot {
		c.app.t.Fatalf("login %s: status %d location %q", email, resp.Code, resp.Location)
	}
}

// adminClient returns a client signed in as a fresh admin.
func (a *testApp) adminClient() *testClient {
	a.t.Helper()
	a.createUser("Admin", "admin@x.com", "adminpw", true)
	c := a.newClient()
	c.login("admin@x.com", "adminpw")
	return c
}

// insertGame stores a game with platforms and returns its id.
func (a *testApp) insertGame(name string, price float64, platforms ...string) int64 {
	a.t.Helper()
	res, err := a.catalog.InsertWithPlatforms(context.Background(), store.GameParams{
		Name:   name,
		Price:  price,
		Genre:  "Aventura",
		Rating: 9,
	}, platforms)
	if err != nil {
		a.t.Fatalf("InsertWithPlatforms: %v", err)
	}
	return res.GameID
}

// pngBytes returns an encoded PNG of the given size.
func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}
