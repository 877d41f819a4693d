package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"store-rating/internal/core/auth"
	"store-rating/internal/core/server"
	"store-rating/internal/domain"
	"store-rating/internal/repo"
	"store-rating/internal/service"
	"store-rating/internal/testutil"
)

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type harness struct {
	t     *testing.T
	db    *gorm.DB
	jwt   *auth.JWTer
	api   *gin.Engine
	admin *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	opts := service.Options{
		Users:    repo.NewUserRepo(db),
		Stores:   repo.NewStoreRepo(db),
		Ratings:  repo.NewRatingRepo(db),
		Strategy: service.StrategyGrouped,
	}
	j := &auth.JWTer{Secret: []byte("router-test"), Issuer: "store-rating", TTL: time.Hour}
	limits := DefaultLimits()
	limits.PerIPRPS, limits.PerIPBurst = 10000, 10000
	d := Deps{
		JWT:    j,
		Store:  service.NewStoreService(opts),
		Admin:  service.NewAdminService(opts),
		Server: server.Options{Mode: gin.TestMode},
		Limits: limits,
	}
	return &harness{t: t, db: db, jwt: j, api: NewAPIEngine(d), admin: NewAdminEngine(d)}
}

func (h *harness) token(u *domain.User) string {
	tok, err := h.jwt.Issue(u.ID, u.Role)
	require.NoError(h.t, err)
	return tok
}

func (h *harness) do(engine *gin.Engine, method, path, token, body string) (int, envelope) {
	h.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func TestAPI_RatingFlow(t *testing.T) {
	h := newHarness(t)
	owner := testutil.SeedUser(t, h.db, "Owner", "o@x.io", domain.RoleOwner)
	user := testutil.SeedUser(t, h.db, "User", "u@x.io", domain.RoleUser)
	s := testutil.SeedStore(t, h.db, "Shop", owner)
	path := "/api/v1/stores/" + itoa(s.ID) + "/rate"

	code, _ := h.do(h.api, http.MethodPost, path, "", `{"score":4}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := h.do(h.api, http.MethodPost, path, h.token(user), `{"score":9}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 400, env.Code)

	code, env = h.do(h.api, http.MethodPost, path, h.token(user), `{"score":4,"comment":"good"}`)
	require.Equal(t, http.StatusCreated, code, env.Msg)
	var created domain.Rating
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 4, created.Score)

	code, env = h.do(h.api, http.MethodPost, path, h.token(user), `{"score":1}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, 409, env.Code)
	assert.Equal(t, "you have already rated this store", env.Msg)

	code, _ = h.do(h.api, http.MethodPost, "/api/v1/stores/99999/rate", h.token(user), `{"score":3}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = h.do(h.api, http.MethodPost, "/api/v1/stores/abc/rate", h.token(user), `{"score":3}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = h.do(h.api, http.MethodGet, "/api/v1/stores?sortBy=name", h.token(user), "")
	require.Equal(t, http.StatusOK, code)
	var views []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &views))
	require.Len(t, views, 1)
	assert.Equal(t, 4.0, views[0]["userRating"])
	assert.Equal(t, 4.0, views[0]["avgRating"])
	assert.NotContains(t, string(env.Data), "good")
}

func TestAPI_AdminCannotBrowse(t *testing.T) {
	h := newHarness(t)
	admin := testutil.SeedUser(t, h.db, "Admin", "a@x.io", domain.RoleAdmin)
	code, env := h.do(h.api, http.MethodGet, "/api/v1/stores", h.token(admin), "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, 403, env.Code)
}

func TestAPI_OwnerRoutes(t *testing.T) {
	h := newHarness(t)
	a := testutil.SeedUser(t, h.db, "A", "a@x.io", domain.RoleOwner)
	b := testutil.SeedUser(t, h.db, "B", "b@x.io", domain.RoleOwner)
	user := testutil.SeedUser(t, h.db, "U", "u@x.io", domain.RoleUser)

	code, env := h.do(h.api, http.MethodPost, "/api/v1/owner/stores", h.token(a), `{"name":"A Shop","address":"1 Road","email":"shop@a.io"}`)
	require.Equal(t, http.StatusCreated, code, env.Msg)
	var st struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &st))
	raters := "/api/v1/owner/stores/" + itoa(st.ID) + "/raters"

	code, _ = h.do(h.api, http.MethodGet, raters, h.token(b), "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = h.do(h.api, http.MethodGet, raters, h.token(user), "")
	assert.Equal(t, http.StatusForbidden, code)

	code, env = h.do(h.api, http.MethodGet, raters, h.token(a), "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"store":{"id":`+itoa(st.ID)+`,"name":"A Shop"},"raters":[]}`, string(env.Data))

	code, env = h.do(h.api, http.MethodPut, "/api/v1/owner/stores/"+itoa(st.ID), h.token(a), `{"name":"Renamed"}`)
	require.Equal(t, http.StatusOK, code, env.Msg)
	assert.Contains(t, string(env.Data), `"name":"Renamed"`)
	assert.Contains(t, string(env.Data), `"email":"shop@a.io"`)

	code, _ = h.do(h.api, http.MethodDelete, "/api/v1/owner/stores/"+itoa(st.ID), h.token(b), "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = h.do(h.api, http.MethodDelete, "/api/v1/owner/stores/"+itoa(st.ID), h.token(a), "")
	assert.Equal(t, http.StatusOK, code)

	code, env = h.do(h.api, http.MethodGet, "/api/v1/me", h.token(a), "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"id":`+itoa(a.ID)+`,"name":"A","email":"a@x.io","address":"1 Test Street","role":"owner"}`, string(env.Data))
}

func TestAdmin_Routes(t *testing.T) {
	h := newHarness(t)
	admin := testutil.SeedUser(t, h.db, "Admin", "admin@x.io", domain.RoleAdmin)
	user := testutil.SeedUser(t, h.db, "User", "u@x.io", domain.RoleUser)

	code, _ := h.do(h.admin, http.MethodGet, "/admin/v1/summary", h.token(user), "")
	assert.Equal(t, http.StatusForbidden, code)

	code, env := h.do(h.admin, http.MethodGet, "/admin/v1/summary", h.token(admin), "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"usersCount":2,"storesCount":0,"ratingsCount":0}`, string(env.Data))

	code, env = h.do(h.admin, http.MethodPost, "/admin/v1/users", h.token(admin),
		`{"name":"Short","email":"n@x.io","address":"A","password":"Passw0rd!","role":"user"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "name must be at least 20 characters", env.Msg)

	code, env = h.do(h.admin, http.MethodPost, "/admin/v1/users", h.token(admin),
		`{"name":"A Sufficiently Long Name","email":"New@X.io","address":"A","password":"Passw0rd!","role":"owner"}`)
	require.Equal(t, http.StatusCreated, code, env.Msg)
	assert.NotContains(t, string(env.Data), "password")

	code, env = h.do(h.admin, http.MethodGet, "/admin/v1/summary", h.token(admin), "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"usersCount":3`)

	code, _ = h.do(h.admin, http.MethodGet, "/admin/v1/users/424242", h.token(admin), "")
	assert.Equal(t, http.StatusNotFound, code)

	code, env = h.do(h.admin, http.MethodGet, "/admin/v1/users?role=own", h.token(admin), "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"email":"new@x.io"`)
	assert.Contains(t, string(env.Data), `"stores":[]`)

	code, _ = h.do(h.admin, http.MethodDelete, "/admin/v1/stores/1", h.token(admin), "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestEngines_HealthAndNoRoute(t *testing.T) {
	h := newHarness(t)
	for _, e := range []*gin.Engine{h.api, h.admin} {
		code, _ := h.do(e, http.MethodGet, "/health", "", "")
		assert.Equal(t, http.StatusOK, code)
		code, _ = h.do(e, http.MethodGet, "/nope", "", "")
		assert.Equal(t, http.StatusNotFound, code)
	}
}

func TestRegistry_MountsByPriority(t *testing.T) {
	var order []string
	reg := &Registry{}
	reg.Register(
		fakeModule{name: "late", order: &order},
		fakeModule{name: "early", prio: 1, order: &order},
		struct{}{},
	)
	reg.MountAPI(gin.New().Group("/"))
	assert.Equal(t, []string{"early", "late"}, order)
}

type fakeModule struct {
	name  string
	prio  int
	order *[]string
}

func (m fakeModule) MountAPI(*gin.RouterGroup) { *m.order = append(*m.order, m.name) }
func (m fakeModule) Priority() int {
	if m.prio == 0 {
		return 100
	}
	return m.prio
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
