package ez

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"store-rating/internal/domain"
	mdw "store-rating/internal/transport/http/middleware"
	resp "store-rating/internal/transport/http/response"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err      error
		wantCode int
		wantMsg  string
	}{
		{domain.Validation("score must be at most 5"), resp.CodeBadRequest, "score must be at most 5"},
		{domain.DuplicateRating(errors.New("UNIQUE constraint failed")), resp.CodeConflict, "you have already rated this store"},
		{domain.AccessDenied(), resp.CodeForbidden, "access denied"},
		{domain.NotFound("store"), resp.CodeNotFound, "store not found"},
		{domain.Internal("db", errors.New("password=secret")), resp.CodeServerError, "internal error"},
		{errors.New("raw"), resp.CodeServerError, "internal error"},
	}
	for _, tc := range cases {
		code, msg := Classify(tc.err)
		assert.Equal(t, tc.wantCode, code, "%v", tc.err)
		assert.Equal(t, tc.wantMsg, msg, "%v", tc.err)
	}
}

type echoIn struct {
	N int `json:"n" binding:"required"`
}

func newEngine(withActor bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("")
	if withActor {
		g.Use(func(c *gin.Context) {
			c.Set(mdw.KeyActor, domain.ActorContext{ID: 1, Role: domain.RoleUser})
		})
	}
	e := New(g, nil)
	Register(e, Action[echoIn, int]{
		Method: http.MethodPost,
		Path:   "/echo/:id",
		Binder: BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, actor domain.ActorContext, in *echoIn) (int, error) {
			id, err := ParamID(c, "id")
			if err != nil {
				return 0, err
			}
			if in.N < 0 {
				return 0, domain.Internal("boom", errors.New("leak"))
			}
			return in.N + int(id) + int(actor.ID), nil
		},
	})
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	r := newEngine(true)

	w := post(r, "/echo/2", `{"n":3}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"code":0,"msg":"OK","data":6}`, w.Body.String())

	w = post(r, "/echo/abc", `{"n":3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"code":400,"msg":"invalid id","data":{}}`, w.Body.String())

	w = post(r, "/echo/2", `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, "/echo/2", `{"n":-1}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "leak")
}

func TestRegister_NoActor(t *testing.T) {
	w := post(newEngine(false), "/echo/2", `{"n":3}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
