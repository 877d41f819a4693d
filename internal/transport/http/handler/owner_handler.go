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

// OwnerHandler serves /owner: the dashboard and management of the caller's own stores.
type OwnerHandler struct {
	svc *service.StoreService
	log *zap.Logger
}

func NewOwnerHandler(svc *service.StoreService, l *zap.Logger) *OwnerHandler {
	return &OwnerHandler{svc: svc, log: l}
}

func (h *OwnerHandler) Priority() int { return 20 }

func (h *OwnerHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g.Group("/owner"), h.log)

	ez.Register(e, ez.Action[query.Params, []service.OwnerStoreView]{
		Method: http.MethodGet,
		Path:   "/stores",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, actor domain.ActorContext, in *query.Params) ([]service.OwnerStoreView, error) {
			return h.svc.OwnerListStores(c.Request.Context(), actor, *in)
		},
	})

	ez.Register(e, ez.Action[service.StoreInput, service.OwnerStoreView]{
		Method: http.MethodPost,
		Path:   "/stores",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, actor domain.ActorContext, in *service.StoreInput) (service.OwnerStoreView, error) {
			return h.svc.OwnerCreateStore(c.Request.Context(), actor, *in)
		},
	})

	ez.Register(e, ez.Action[service.StorePatch, service.OwnerStoreView]{
		Method: http.MethodPut,
		Path:   "/stores/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, actor domain.ActorContext, in *service.StorePatch) (service.OwnerStoreView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return service.OwnerStoreView{}, err
			}
			return h.svc.OwnerUpdateStore(c.Request.Context(), actor, id, *in)
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
			if err := h.svc.OwnerDeleteStore(c.Request.Context(), actor, id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})

	ez.Register(e, ez.Action[struct{}, service.RatersView]{
		Method: http.MethodGet,
		Path:   "/stores/:id/raters",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, actor domain.ActorContext, _ *struct{}) (service.RatersView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return service.RatersView{}, err
			}
			return h.svc.ListRatersOfStore(c.Request.Context(), actor, id)
		},
	})
}
