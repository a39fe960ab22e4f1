package repositories

import (
	"context"
	"time"

	"tracker/internal/codec"
	"tracker/internal/domain"
	"tracker/internal/domain/models"
	"tracker/internal/pagination"
	"tracker/internal/store"
)

var SessionSortable = map[string]string{
	"start_time": SessionsTable.Column("start_time"),
	"end_time":   SessionsTable.Column("end_time"),
}

type SessionFilter struct {
	TaskID   domain.Option[domain.PositiveInteger]
	OpenOnly bool
}

type SessionRepository struct {
	Store *store.Store
}

func (r SessionRepository) List(ctx context.Context, userID int64, filter SessionFilter, args pagination.Args) (pagination.Connection[models.Session], error) {
	q := scoped(SessionsTable, ownedSessions(userID))
	if id, ok := filter.TaskID.Get(); ok {
		q.Eq("task_id", id.Int64())
	}
	if filter.OpenOnly {
		q.Eq("end_time", nil)
	}
	return store.Paginate(ctx, r.Store, args, store.Page{Query: q, Sortable: SessionSortable}, models.SessionCodec)
}

func (r SessionRepository) Find(ctx context.Context, userID, id int64) (domain.Option[models.Session], error) {
	return store.Get(ctx, r.Store, SessionsTable, models.SessionCodec, byID(SessionsTable, id, ownedSessions(userID)))
}

// FindOpen returns the sessions of a task that have not been stopped.
func (r SessionRepository) FindOpen(ctx context.Context, taskID int64) ([]models.Session, error) {
	return store.GetAll(ctx, r.Store, SessionsTable, models.SessionCodec, store.Match{"task_id": taskID, "end_time": nil})
}

func (r SessionRepository) Create(ctx context.Context, s models.NewSession) (int64, error) {
	ids, err := store.Insert(ctx, r.Store, SessionsTable, models.NewSessionCodec, s)
	return firstID(ids), err
}

func (r SessionRepository) Stop(ctx context.Context, id int64, at time.Time) (int64, error) {
	patch := codec.Partial[models.Session]{
		Value:  models.Session{EndTime: domain.Some(at)},
		Fields: []string{"end_time"},
	}
	return store.Update(ctx, r.Store, SessionsTable, id, patch, models.SessionEndCodec)
}

func (r SessionRepository) Delete(ctx context.Context, id int64) (int64, error) {
	return store.Remove(ctx, r.Store, SessionsTable, store.ByID(id))
}

// ForProject returns the sessions logged on any task of a project.
func (r SessionRepository) ForProject(ctx context.Context, projectID int64) ([]models.Session, error) {
	return store.GetAll(ctx, r.Store, SessionsTable, models.SessionCodec, store.Build(func(q *store.Select) {
		q.Join("JOIN tasks ON tasks.id = sessions.task_id").
			Where("tasks.project_id = ?", projectID).
			OrderBy(SessionsTable.Column("start_time"), SessionsTable.Column("id"))
	}))
}
