package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"store-rating/internal/domain"
	"store-rating/internal/query"
	"store-rating/internal/service"
	"store-rating/internal/transport/http/ez"
)

// AdminHandler serves every route of the admin engine.
type AdminHandler struct {
	svc *service.AdminService
	log *zap.Logger
}

func NewAdminHandler(svc *service.AdminService, l *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, log: l}
}

func (h *AdminHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.Register(e, ez.Action[struct{}, service.Summary]{
		Method: http.MethodGet,
		Path:   "/summary",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, actor domain.ActorContext, _ *struct{}) (service.Summary, error) {
			return h.svc.Summary(c.Request.Context(), actor)
		},
	})

	// users
	ez.Register(e, ez.Action[query.Params, []service.AdminUserView]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, actor domain.ActorContext, in *query.Params) ([]service.AdminUserView, error) {
			return h.svc.ListUsers(c.Request.Context(), actor, *in)
		},
	})
	ez.Register(e, ez.Action[service.CreateUserInput, service.AdminUserView]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, actor domain.ActorContext, in *service.CreateUserInput) (service.AdminUserView, error) {
			return h.svc.CreateUser(c.Request.Context(), actor, *in)
		},
	})
	ez.Register(e, ez.Action[struct{}, service.AdminUserView]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, actor domain.ActorContext, _ *struct{}) (service.AdminUserView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return service.AdminUserView{}, err
			}
			return h.svc.GetUser(c.Request.Context(), actor, id)
		},
	})
	ez.Register(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, actor domain.ActorContext, _ *struct{}) (gin.H, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			if err := h.svc.DeleteUser(c.Request.Context(), actor, id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})

	// stores
	ez.Register(e, ez.Action[query.Params, []service.AdminStoreView]{
		Method: http.MethodGet,
		Path:   "/stores",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, actor domain.ActorContext, in *query.Params) ([]service.AdminStoreView, error) {
			return h.svc.ListStores(c.Request.Context(), actor, *in)
		},
	})
	ez.Register(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/stores/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, actor domain.ActorContext, _ *struct{}) (gin.H, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			if err := h.svc.DeleteStore(c.Request.Context(), actor, id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
	ez.Register(e, ez.Action[struct{}, service.RatersView]{
		Method: http.MethodGet,
		Path:   "/stores/:id/ratings",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, actor domain.ActorContext, _ *struct{}) (service.RatersView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return service.RatersView{}, err
			}
			return h.svc.StoreRatings(c.Request.Context(), actor, id)
		},
	})
}
