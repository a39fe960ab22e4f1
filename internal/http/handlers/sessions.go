package handlers

import (
	"context"
	"net/http"
	"time"

	"tracker/internal/codec"
	"tracker/internal/domain"
	"tracker/internal/domain/models"
	"tracker/internal/http/dispatch"
	"tracker/internal/pagination"
	"tracker/internal/repositories"

	"github.com/gin-gonic/gin"
)

type sessionQuery struct {
	Page     pagination.Args
	TaskID   domain.Option[domain.PositiveInteger]
	OpenOnly domain.Option[bool]
}

var sessionQueryCodec = codec.NewObject("SessionQuery",
	codec.Inline(pageArgsCodec(repositories.SessionSortable), func(q *sessionQuery) *pagination.Args { return &q.Page }),
	codec.Prop("task_id", codec.Optional(codec.FromString(codec.PositiveInteger())), func(q *sessionQuery) *domain.Option[domain.PositiveInteger] { return &q.TaskID }),
	codec.Prop("open", codec.Optional(codec.FromString(codec.Bool())), func(q *sessionQuery) *domain.Option[bool] { return &q.OpenOnly }),
).Codec()

var sessionConnectionCodec = pagination.ConnectionCodec(models.SessionCodec.Codec())

// stopBody is optional; without it the session ends now.
type stopBody struct {
	EndTime domain.Option[time.Time]
}

var stopBodyCodec = codec.Optional(codec.NewObject("StopSession",
	codec.Prop("end_time", codec.Optional(codec.Time()), func(b *stopBody) *domain.Option[time.Time] { return &b.EndTime }),
).Codec())

// GET /api/sessions
func (a *API) listSessions() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[None, sessionQuery, None, pagination.Connection[models.Session]]{
		Name:   "sessions.list",
		Query:  sessionQueryCodec,
		Output: sessionConnectionCodec,
		Handler: func(ctx context.Context, req dispatch.Request[None, sessionQuery, None]) (pagination.Connection[models.Session], error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return pagination.Connection[models.Session]{}, err
			}
			filter := repositories.SessionFilter{TaskID: req.Query.TaskID, OpenOnly: req.Query.OpenOnly.OrElse(false)}
			return a.Sessions.List(ctx, userID, filter, req.Query.Page)
		},
	})
}

// POST /api/sessions
func (a *API) startSession() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[None, None, models.NewSession, models.Session]{
		Name:   "sessions.start",
		Body:   models.NewSessionCodec.Codec(),
		Output: models.SessionCodec.Codec(),
		Status: http.StatusCreated,
		Handler: func(ctx context.Context, req dispatch.Request[None, None, models.NewSession]) (models.Session, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return models.Session{}, err
			}
			return a.Tracking.Start(ctx, req.RequestID, userID, req.Body)
		},
	})
}

// PUT /api/sessions/:id/stop
func (a *API) stopSession() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[idParams, None, domain.Option[stopBody], models.Session]{
		Name:   "sessions.stop",
		Params: idParamsCodec,
		Body:   stopBodyCodec,
		Output: models.SessionCodec.Codec(),
		Handler: func(ctx context.Context, req dispatch.Request[idParams, None, domain.Option[stopBody]]) (models.Session, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return models.Session{}, err
			}
			body, _ := req.Body.Get()
			return a.Tracking.Stop(ctx, req.RequestID, userID, req.Params.ID.Int64(), body.EndTime)
		},
	})
}

// DELETE /api/sessions/:id
func (a *API) deleteSession() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[idParams, None, None, None]{
		Name:   "sessions.delete",
		Params: idParamsCodec,
		Status: http.StatusNoContent,
		Handler: func(ctx context.Context, req dispatch.Request[idParams, None, None]) (None, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return None{}, err
			}
			return None{}, a.Tracking.Delete(ctx, req.RequestID, userID, req.Params.ID.Int64())
		},
	})
}
