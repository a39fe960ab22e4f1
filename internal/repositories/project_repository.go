package repositories

import (
	"context"

	"tracker/internal/codec"
	"tracker/internal/domain"
	"tracker/internal/domain/models"
	"tracker/internal/pagination"
	"tracker/internal/store"
)

var ProjectSortable = map[string]string{
	"name":        ProjectsTable.Column("name"),
	"hourly_rate": ProjectsTable.Column("hourly_rate"),
	"created_at":  ProjectsTable.Column("created_at"),
}

// ProjectFilter narrows a project listing.
type ProjectFilter struct {
	ClientID domain.Option[domain.PositiveInteger]
}

type ProjectRepository struct {
	Store *store.Store
}

func (r ProjectRepository) List(ctx context.Context, userID int64, filter ProjectFilter, args pagination.Args) (pagination.Connection[models.Project], error) {
	q := scoped(ProjectsTable, ownedProjects(userID))
	if id, ok := filter.ClientID.Get(); ok {
		q.Eq("client_id", id.Int64())
	}
	return store.Paginate(ctx, r.Store, args, store.Page{Query: q, Sortable: ProjectSortable}, models.ProjectCodec)
}

func (r ProjectRepository) Find(ctx context.Context, userID, id int64) (domain.Option[models.Project], error) {
	return store.Get(ctx, r.Store, ProjectsTable, models.ProjectCodec, byID(ProjectsTable, id, ownedProjects(userID)))
}

func (r ProjectRepository) Create(ctx context.Context, p models.NewProject) (int64, error) {
	ids, err := store.Insert(ctx, r.Store, ProjectsTable, models.NewProjectCodec, p)
	return firstID(ids), err
}

func (r ProjectRepository) Update(ctx context.Context, id int64, patch codec.Partial[models.Project]) (int64, error) {
	return store.Update(ctx, r.Store, ProjectsTable, id, patch, models.ProjectPatchCodec)
}

// Delete removes one project. Ownership cannot be expressed in a DELETE
// without joins, so callers check it with Find first.
func (r ProjectRepository) Delete(ctx context.Context, id int64) (int64, error) {
	return store.Remove(ctx, r.Store, ProjectsTable, store.ByID(id))
}
