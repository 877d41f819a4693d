package router

import (
	"github.com/gin-gonic/gin"

	"store-rating/internal/domain"
	"store-rating/internal/transport/http/handler"
	mdw "store-rating/internal/transport/http/middleware"
)

// NewAdminEngine serves /admin/v1; the whole group requires the admin role.
func NewAdminEngine(d Deps) *gin.Engine {
	d = d.withDefaults()
	r := newEngine(d, "admin")

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWT, domain.RoleAdmin))

	reg := &Registry{}
	reg.Register(handler.NewAdminHandler(d.Admin, d.Log))
	reg.MountAdmin(admin)
	return r
}
