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

// StoreHandler serves browsing, rating and the caller's profile on the api engine.
type StoreHandler struct {
	svc *service.StoreService
	log *zap.Logger
}

func NewStoreHandler(svc *service.StoreService, l *zap.Logger) *StoreHandler {
	return &StoreHandler{svc: svc, log: l}
}

func (h *StoreHandler) Priority() int { return 10 }

func (h *StoreHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.Register(e, ez.Action[query.Params, []service.UserStoreView]{
		Method: http.MethodGet,
		Path:   "/stores",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, actor domain.ActorContext, in *query.Params) ([]service.UserStoreView, error) {
			return h.svc.ListStores(c.Request.Context(), actor, *in)
		},
	})

	ez.Register(e, ez.Action[service.RatingInput, *domain.Rating]{
		Method: http.MethodPost,
		Path:   "/stores/:id/rate",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, actor domain.ActorContext, in *service.RatingInput) (*domain.Rating, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.SubmitRating(c.Request.Context(), actor, id, *in)
		},
	})

	ez.Register(e, ez.Action[struct{}, service.ProfileView]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, actor domain.ActorContext, _ *struct{}) (service.ProfileView, error) {
			return h.svc.Me(c.Request.Context(), actor)
		},
	})
}
