package handlers

import (
	"context"
	"net/http"

	"tracker/internal/codec"
	"tracker/internal/domain"
	"tracker/internal/domain/models"
	"tracker/internal/http/dispatch"
	"tracker/internal/pagination"
	"tracker/internal/repositories"
	"tracker/internal/services"

	"github.com/gin-gonic/gin"
)

type projectQuery struct {
	Page     pagination.Args
	ClientID domain.Option[domain.PositiveInteger]
}

var projectQueryCodec = codec.NewObject("ProjectQuery",
	codec.Inline(pageArgsCodec(repositories.ProjectSortable), func(q *projectQuery) *pagination.Args { return &q.Page }),
	codec.Prop("client_id", codec.Optional(codec.FromString(codec.PositiveInteger())), func(q *projectQuery) *domain.Option[domain.PositiveInteger] { return &q.ClientID }),
).Codec()

var projectConnectionCodec = pagination.ConnectionCodec(models.ProjectCodec.Codec())

type invoiceQuery struct {
	TaxRateID domain.Option[domain.PositiveInteger]
}

var invoiceQueryCodec = codec.NewObject("InvoiceQuery",
	codec.Prop("tax_rate_id", codec.Optional(codec.FromString(codec.PositiveInteger())), func(q *invoiceQuery) *domain.Option[domain.PositiveInteger] { return &q.TaxRateID }),
).Codec()

// ownClient fails with not_found unless userID owns clientID.
func (a *API) ownClient(ctx context.Context, userID int64, clientID domain.PositiveInteger) error {
	c, err := a.Clients.Find(ctx, userID, clientID.Int64())
	_, err = found(c, err, "client")
	return err
}

// GET /api/projects
func (a *API) listProjects() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[None, projectQuery, None, pagination.Connection[models.Project]]{
		Name:   "projects.list",
		Query:  projectQueryCodec,
		Output: projectConnectionCodec,
		Handler: func(ctx context.Context, req dispatch.Request[None, projectQuery, None]) (pagination.Connection[models.Project], error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return pagination.Connection[models.Project]{}, err
			}
			filter := repositories.ProjectFilter{ClientID: req.Query.ClientID}
			return a.Projects.List(ctx, userID, filter, req.Query.Page)
		},
	})
}

// GET /api/projects/:id
func (a *API) getProject() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[idParams, None, None, models.Project]{
		Name:   "projects.get",
		Params: idParamsCodec,
		Output: models.ProjectCodec.Codec(),
		Handler: func(ctx context.Context, req dispatch.Request[idParams, None, None]) (models.Project, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return models.Project{}, err
			}
			p, err := a.Projects.Find(ctx, userID, req.Params.ID.Int64())
			return found(p, err, "project")
		},
	})
}

// POST /api/projects
func (a *API) createProject() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[None, None, models.NewProject, models.Project]{
		Name:   "projects.create",
		Body:   models.NewProjectCodec.Codec(),
		Output: models.ProjectCodec.Codec(),
		Status: http.StatusCreated,
		Handler: func(ctx context.Context, req dispatch.Request[None, None, models.NewProject]) (models.Project, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return models.Project{}, err
			}
			if err := a.ownClient(ctx, userID, req.Body.ClientID); err != nil {
				return models.Project{}, err
			}
			id, err := a.Projects.Create(ctx, req.Body)
			if err != nil {
				return models.Project{}, err
			}
			p, err := a.Projects.Find(ctx, userID, id)
			return found(p, err, "project")
		},
	})
}

// PUT /api/projects/:id
func (a *API) updateProject() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[idParams, None, codec.Partial[models.Project], models.Project]{
		Name:   "projects.update",
		Params: idParamsCodec,
		Body:   models.ProjectPatchCodec.PartialCodec(),
		Output: models.ProjectCodec.Codec(),
		Handler: func(ctx context.Context, req dispatch.Request[idParams, None, codec.Partial[models.Project]]) (models.Project, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return models.Project{}, err
			}
			id := req.Params.ID.Int64()
			existing, err := a.Projects.Find(ctx, userID, id)
			if _, err := found(existing, err, "project"); err != nil {
				return models.Project{}, err
			}
			if req.Body.Has("client_id") {
				if err := a.ownClient(ctx, userID, req.Body.Value.ClientID); err != nil {
					return models.Project{}, err
				}
			}
			if _, err := a.Projects.Update(ctx, id, req.Body); err != nil {
				return models.Project{}, err
			}
			p, err := a.Projects.Find(ctx, userID, id)
			return found(p, err, "project")
		},
	})
}

// DELETE /api/projects/:id
func (a *API) deleteProject() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[idParams, None, None, None]{
		Name:   "projects.delete",
		Params: idParamsCodec,
		Status: http.StatusNoContent,
		Handler: func(ctx context.Context, req dispatch.Request[idParams, None, None]) (None, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return None{}, err
			}
			id := req.Params.ID.Int64()
			existing, err := a.Projects.Find(ctx, userID, id)
			if _, err := found(existing, err, "project"); err != nil {
				return None{}, err
			}
			n, err := a.Projects.Delete(ctx, id)
			return removed(n, err, "project")
		},
	})
}

// GET /api/projects/:id/invoice
func (a *API) projectInvoice() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[idParams, invoiceQuery, None, services.Invoice]{
		Name:   "projects.invoice",
		Params: idParamsCodec,
		Query:  invoiceQueryCodec,
		Write: func(c *gin.Context, status int, inv services.Invoice) {
			c.Header("Content-Disposition", `inline; filename="`+inv.Filename+`"`)
			c.Data(status, "application/pdf", inv.PDF)
		},
		Handler: func(ctx context.Context, req dispatch.Request[idParams, invoiceQuery, None]) (services.Invoice, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return services.Invoice{}, err
			}
			return a.Invoices.Generate(ctx, req.RequestID, userID, req.Params.ID.Int64(), req.Query.TaxRateID)
		},
	})
}
