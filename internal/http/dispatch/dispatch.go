// Package dispatch is the uniform request contract of every endpoint:
// decode the three input surfaces, resolve the caller, run a handler that
// returns a value or an error, and write exactly one structured response.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"tracker/internal/auth"
	"tracker/internal/codec"
	"tracker/internal/domain"
	"tracker/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
)

// None is the input or output of a surface a route does not use.
type None = struct{}

// Request is what a handler receives: every surface already validated.
type Request[P, Q, B any] struct {
	Params    P
	Query     Q
	Body      B
	Auth      domain.AuthContext
	RequestID string
}

// Route defines one endpoint. A zero codec means the surface is not read
// (input) or that the response has no body (output). Write, when set,
// replaces the JSON encoding of successful responses; errors are still JSON.
type Route[P, Q, B, O any] struct {
	Name    string
	Params  codec.Codec[P]
	Query   codec.Codec[Q]
	Body    codec.Codec[B]
	Output  codec.Codec[O]
	Write   func(c *gin.Context, status int, out O)
	Status  int
	Handler func(ctx context.Context, req Request[P, Q, B]) (O, error)
}

// Dispatcher holds what every route shares.
type Dispatcher struct {
	Resolver auth.Resolver
	Logger   hclog.Logger
	Metrics  *Metrics
}

func New(resolver auth.Resolver, logger hclog.Logger, metrics *Metrics) *Dispatcher {
	if resolver == nil {
		resolver = auth.AnonymousResolver
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Dispatcher{Resolver: resolver, Logger: logger.Named("dispatch"), Metrics: metrics}
}

// Handle turns a route into a gin handler.
func Handle[P, Q, B, O any](d *Dispatcher, route Route[P, Q, B, O]) gin.HandlerFunc {
	status := route.Status
	if status == 0 {
		status = http.StatusOK
	}
	return func(c *gin.Context) {
		start := time.Now()
		code := "ok"
		defer func() {
			if rec := recover(); rec != nil {
				err := domain.Internal("panic in handler", fmt.Errorf("%v", rec))
				code = string(d.respondError(c, route.Name, err))
			}
			d.Metrics.observe(route.Name, code, start)
		}()

		out, err := run(c, d, route)
		if err != nil {
			code = string(d.respondError(c, route.Name, err))
			return
		}
		switch {
		case route.Write != nil:
			route.Write(c, status, out)
		case route.Output.IsZero():
			c.Status(status)
		default:
			c.JSON(status, route.Output.Encode(out))
		}
	}
}

func run[P, Q, B, O any](c *gin.Context, d *Dispatcher, route Route[P, Q, B, O]) (O, error) {
	var zero O
	req, err := decodeRequest(c, route)
	if err != nil {
		d.Logger.Debug("request rejected", "route", route.Name, "request_id", middleware.GetRequestID(c), "error", err)
		return zero, err
	}
	ac, err := d.Resolver.Resolve(c.Request.Context(), c.Request)
	if err != nil {
		return zero, err
	}
	req.Auth = ac
	req.RequestID = middleware.GetRequestID(c)
	return route.Handler(c.Request.Context(), req)
}

// decodeRequest validates params, query and body concurrently and reports
// every violation of all three in one bad_request.
func decodeRequest[P, Q, B, O any](c *gin.Context, route Route[P, Q, B, O]) (Request[P, Q, B], error) {
	var req Request[P, Q, B]
	var failures [3]codec.Errors

	params := paramsMap(c.Params)
	query := queryMap(c.Request.URL.Query())
	body, bodyErr := readBody(c.Request, !route.Body.IsZero())

	var g errgroup.Group
	g.Go(func() error {
		failures[0] = decodeSurface(route.Params, params, "params", &req.Params)
		return nil
	})
	g.Go(func() error {
		failures[1] = decodeSurface(route.Query, query, "query", &req.Query)
		return nil
	})
	g.Go(func() error {
		if bodyErr != nil {
			failures[2] = codec.Errors{{Path: "body", Message: bodyErr.Error()}}
			return nil
		}
		failures[2] = decodeSurface(route.Body, body, "body", &req.Body)
		return nil
	})
	_ = g.Wait()

	var all codec.Errors
	for _, f := range failures {
		all = append(all, f...)
	}
	if len(all) > 0 {
		return req, domain.BadRequest("invalid request").WithExtra("errors", all)
	}
	return req, nil
}

func decodeSurface[T any](c codec.Codec[T], in any, surface string, dst *T) codec.Errors {
	if c.IsZero() {
		return nil
	}
	v, err := c.Decode(in)
	if err != nil {
		if errs, ok := codec.AsErrors(err); ok {
			return errs.Prefix(surface)
		}
		return codec.Errors{{Path: surface, Message: err.Error()}}
	}
	*dst = v
	return nil
}

func paramsMap(ps gin.Params) map[string]any {
	m := make(map[string]any, len(ps))
	for _, p := range ps {
		m[p.Key] = p.Value
	}
	return m
}

// queryMap keeps single values as strings and repeated keys as lists.
func queryMap(values url.Values) map[string]any {
	m := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			m[k] = vs[0]
			continue
		}
		list := make([]any, len(vs))
		for i, v := range vs {
			list[i] = v
		}
		m[k] = list
	}
	return m
}

// readBody parses a JSON body into a wire value. An empty body is null.
func readBody(r *http.Request, wanted bool) (any, error) {
	if !wanted || r.Body == nil {
		return nil, nil
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("unreadable body")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("malformed JSON")
	}
	if dec.More() {
		return nil, fmt.Errorf("malformed JSON")
	}
	return v, nil
}
