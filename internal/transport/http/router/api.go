package router

import (
	"github.com/gin-gonic/gin"

	"store-rating/internal/transport/http/handler"
	mdw "store-rating/internal/transport/http/middleware"
)

// NewAPIEngine serves users and owners under /api/v1. Every route needs a bearer token.
func NewAPIEngine(d Deps) *gin.Engine {
	d = d.withDefaults()
	r := newEngine(d, "api")

	api := r.Group("/api/v1")
	api.Use(mdw.AuthJWT(d.JWT, ""))

	reg := &Registry{}
	reg.Register(
		handler.NewStoreHandler(d.Store, d.Log),
		handler.NewOwnerHandler(d.Store, d.Log),
	)
	reg.MountAPI(api)
	return r
}
