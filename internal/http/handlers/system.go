package handlers

import (
	"context"

	"tracker/internal/codec"
	"tracker/internal/domain"
	"tracker/internal/http/dispatch"

	"github.com/gin-gonic/gin"
)

type status struct {
	Status  string
	Message string
}

var statusCodec = codec.NewObject("Status",
	codec.Prop("status", codec.String(), func(s *status) *string { return &s.Status }),
	codec.Prop("message", codec.String(), func(s *status) *string { return &s.Message }),
).Codec()

func (a *API) health() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[None, None, None, status]{
		Name:   "system.health",
		Output: statusCodec,
		Handler: func(context.Context, dispatch.Request[None, None, None]) (status, error) {
			return status{Status: "ok", Message: "tracker is running"}, nil
		},
	})
}

// dbCheck pings the database with the request's deadline.
func (a *API) dbCheck() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[None, None, None, status]{
		Name:   "system.db_check",
		Output: statusCodec,
		Handler: func(ctx context.Context, _ dispatch.Request[None, None, None]) (status, error) {
			if err := a.Store.DB().PingContext(ctx); err != nil {
				return status{}, domain.Internal("ping database", err)
			}
			return status{Status: "ok", Message: "database connection ok"}, nil
		},
	})
}
