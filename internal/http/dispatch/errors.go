package dispatch

import (
	"tracker/internal/domain"
	"tracker/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the wire shape of every failed response.
type ErrorBody struct {
	Code    domain.ErrorKind `json:"code"`
	Message string           `json:"message"`
	Extras  map[string]any   `json:"extras"`
}

const internalMessage = "internal server error"

// respondError classifies err, logs server-side failures in full and writes
// the client-safe body. It returns the kind for metrics.
func (d *Dispatcher) respondError(c *gin.Context, route string, err error) domain.ErrorKind {
	de := domain.FromError(err)
	body := ErrorBody{Code: de.Kind, Message: de.Message, Extras: de.Extras}
	if de.Kind == domain.KindInternal {
		d.Logger.Error("request failed",
			"route", route,
			"request_id", middleware.GetRequestID(c),
			"error", err,
		)
		body.Message = internalMessage
		body.Extras = nil
	}
	if body.Extras == nil {
		body.Extras = map[string]any{}
	}
	c.AbortWithStatusJSON(de.Kind.Status(), body)
	return de.Kind
}
