// Package ez registers typed handlers: bind input, resolve the caller, run, and map errors
// onto the response envelope in one place.
package ez

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"store-rating/internal/domain"
	mdw "store-rating/internal/transport/http/middleware"
	resp "store-rating/internal/transport/http/response"
)

type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none"
)

// EZ is a router group plus the logger used for internal failures.
type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

// Action describes one endpoint. I is the bound input, O the payload placed in data.
type Action[I any, O any] struct {
	Method string
	Path   string
	Binder Binder
	// Status overrides 200 on success, e.g. 201 for creates.
	Status  int
	Handler func(c *gin.Context, actor domain.ActorContext, in *I) (O, error)
}

// Register mounts a on e. The group must run AuthJWT; a request without an actor is rejected.
func Register[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		actor, ok := mdw.Actor(c)
		if !ok {
			resp.Abort(c, resp.CodeUnauthorized, "unauthorized")
			return
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			resp.Abort(c, resp.CodeBadRequest, bindMessage(bindErr))
			return
		}

		out, err := a.Handler(c, actor, &in)
		if err != nil {
			e.fail(c, err)
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		c.JSON(status, resp.OK(out))
	}
	e.g.Handle(strings.ToUpper(a.Method), a.Path, h)
}

func (e EZ) fail(c *gin.Context, err error) {
	code, msg := Classify(err)
	if code == resp.CodeServerError {
		_ = c.Error(err)
		e.log.Error("request failed",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	resp.Abort(c, code, msg)
}

// Classify maps an error onto an envelope code and the message safe to show the caller.
func Classify(err error) (int, string) {
	var de *domain.Error
	if !errors.As(err, &de) {
		return resp.CodeServerError, "internal error"
	}
	msg := de.Msg
	if msg == "" {
		msg = de.Kind.String()
	}
	switch de.Kind {
	case domain.KindValidation:
		return resp.CodeBadRequest, msg
	case domain.KindDuplicateRating:
		return resp.CodeConflict, msg
	case domain.KindAccessDenied:
		return resp.CodeForbidden, msg
	case domain.KindNotFound:
		return resp.CodeNotFound, msg
	}
	return resp.CodeServerError, "internal error"
}

// ParamID reads a positive numeric path parameter; anything else is a validation error.
func ParamID(c *gin.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, domain.Validation("invalid %s", name)
	}
	return uint(n), nil
}

func bindMessage(err error) string {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return "request body too large"
	}
	return "invalid request body"
}
