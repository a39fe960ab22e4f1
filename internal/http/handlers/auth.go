package handlers

import (
	"context"
	"net/http"

	"tracker/internal/domain/models"
	"tracker/internal/http/dispatch"

	"github.com/gin-gonic/gin"
)

// POST /api/auth/register
func (a *API) register() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[None, None, models.Registration, models.AuthToken]{
		Name:   "auth.register",
		Body:   models.RegistrationCodec.Codec(),
		Output: models.AuthTokenCodec.Codec(),
		Status: http.StatusCreated,
		Handler: func(ctx context.Context, req dispatch.Request[None, None, models.Registration]) (models.AuthToken, error) {
			return a.Auth.Register(ctx, req.RequestID, req.Body)
		},
	})
}

// POST /api/auth/login
func (a *API) login() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[None, None, models.Credentials, models.AuthToken]{
		Name:   "auth.login",
		Body:   models.CredentialsCodec.Codec(),
		Output: models.AuthTokenCodec.Codec(),
		Handler: func(ctx context.Context, req dispatch.Request[None, None, models.Credentials]) (models.AuthToken, error) {
			return a.Auth.Login(ctx, req.RequestID, req.Body)
		},
	})
}

// GET /api/profile
func (a *API) profile() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[None, None, None, models.User]{
		Name:   "auth.profile",
		Output: models.UserCodec.Codec(),
		Handler: func(ctx context.Context, req dispatch.Request[None, None, None]) (models.User, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return models.User{}, err
			}
			return a.Auth.Profile(ctx, userID)
		},
	})
}
