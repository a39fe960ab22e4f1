// Package handlers defines the HTTP surface: one dispatch route per
// endpoint, grouped by resource.
package handlers

import (
	"tracker/internal/auth"
	"tracker/internal/http/dispatch"
	"tracker/internal/repositories"
	"tracker/internal/services"
	"tracker/internal/store"
	"tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
)

// API holds the collaborators every route shares.
type API struct {
	Dispatcher *dispatch.Dispatcher
	Store      *store.Store
	TaxRates   repositories.TaxRateRepository
	Clients    repositories.ClientRepository
	Projects   repositories.ProjectRepository
	Tasks      repositories.TaskRepository
	Sessions   repositories.SessionRepository
	Auth       services.AuthService
	Tracking   services.SessionService
	Invoices   services.InvoiceService
}

// New wires repositories and services over one store.
func New(s *store.Store, d *dispatch.Dispatcher, issuer *auth.Issuer, logger hclog.Logger) *API {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	a := &API{
		Dispatcher: d,
		Store:      s,
		TaxRates:   repositories.TaxRateRepository{Store: s},
		Clients:    repositories.ClientRepository{Store: s},
		Projects:   repositories.ProjectRepository{Store: s},
		Tasks:      repositories.TaskRepository{Store: s},
		Sessions:   repositories.SessionRepository{Store: s},
	}
	a.Auth = services.AuthService{Users: repositories.UserRepository{Store: s}, Issuer: issuer, Logger: logger}
	a.Tracking = services.SessionService{Sessions: a.Sessions, Tasks: a.Tasks, Logger: logger, Now: utils.NowUTC}
	a.Invoices = services.InvoiceService{
		Projects: a.Projects,
		Clients:  a.Clients,
		Tasks:    a.Tasks,
		Sessions: a.Sessions,
		TaxRates: a.TaxRates,
		Logger:   logger,
		Now:      utils.NowUTC,
	}
	return a
}

// Mount registers every route under g.
func (a *API) Mount(g *gin.RouterGroup) {
	g.GET("/health", a.health())
	g.GET("/db-check", a.dbCheck())

	authGroup := g.Group("/auth")
	authGroup.POST("/register", a.register())
	authGroup.POST("/login", a.login())
	g.GET("/profile", a.profile())

	rates := g.Group("/tax-rates")
	rates.GET("", a.listTaxRates())
	rates.POST("", a.createTaxRate())
	rates.DELETE("/:id", a.deleteTaxRate())

	clients := g.Group("/clients")
	clients.GET("", a.listClients())
	clients.POST("", a.createClient())
	clients.GET("/:id", a.getClient())
	clients.PUT("/:id", a.updateClient())
	clients.DELETE("/:id", a.deleteClient())

	projects := g.Group("/projects")
	projects.GET("", a.listProjects())
	projects.POST("", a.createProject())
	projects.GET("/:id", a.getProject())
	projects.PUT("/:id", a.updateProject())
	projects.DELETE("/:id", a.deleteProject())
	projects.GET("/:id/invoice", a.projectInvoice())

	tasks := g.Group("/tasks")
	tasks.GET("", a.listTasks())
	tasks.POST("", a.createTask())
	tasks.POST("/batch", a.createTasks())
	tasks.GET("/:id", a.getTask())
	tasks.PUT("/:id", a.updateTask())
	tasks.DELETE("/:id", a.deleteTask())

	sessions := g.Group("/sessions")
	sessions.GET("", a.listSessions())
	sessions.POST("", a.startSession())
	sessions.PUT("/:id/stop", a.stopSession())
	sessions.DELETE("/:id", a.deleteSession())
}
