package repositories

import (
	"context"

	"tracker/internal/codec"
	"tracker/internal/domain"
	"tracker/internal/domain/models"
	"tracker/internal/pagination"
	"tracker/internal/store"
)

var TaskSortable = map[string]string{
	"name":           TasksTable.Column("name"),
	"expected_hours": TasksTable.Column("expected_hours"),
	"created_at":     TasksTable.Column("created_at"),
}

type TaskFilter struct {
	ProjectID   domain.Option[domain.PositiveInteger]
	IsCompleted domain.Option[bool]
}

type TaskRepository struct {
	Store *store.Store
}

func (r TaskRepository) List(ctx context.Context, userID int64, filter TaskFilter, args pagination.Args) (pagination.Connection[models.Task], error) {
	q := scoped(TasksTable, ownedTasks(userID))
	if id, ok := filter.ProjectID.Get(); ok {
		q.Eq("project_id", id.Int64())
	}
	if done, ok := filter.IsCompleted.Get(); ok {
		q.Eq("is_completed", done)
	}
	return store.Paginate(ctx, r.Store, args, store.Page{Query: q, Sortable: TaskSortable}, models.TaskCodec)
}

func (r TaskRepository) Find(ctx context.Context, userID, id int64) (domain.Option[models.Task], error) {
	return store.Get(ctx, r.Store, TasksTable, models.TaskCodec, byID(TasksTable, id, ownedTasks(userID)))
}

// Create inserts every task in one statement and returns their ids in order.
func (r TaskRepository) Create(ctx context.Context, tasks ...models.NewTask) ([]int64, error) {
	return store.Insert(ctx, r.Store, TasksTable, models.NewTaskCodec, tasks...)
}

func (r TaskRepository) Update(ctx context.Context, id int64, patch codec.Partial[models.Task]) (int64, error) {
	return store.Update(ctx, r.Store, TasksTable, id, patch, models.TaskPatchCodec)
}

func (r TaskRepository) Delete(ctx context.Context, id int64) (int64, error) {
	return store.Remove(ctx, r.Store, TasksTable, store.ByID(id))
}

// ForProject returns every task of a project the caller already owns, oldest first.
func (r TaskRepository) ForProject(ctx context.Context, projectID int64) ([]models.Task, error) {
	return store.GetAll(ctx, r.Store, TasksTable, models.TaskCodec, store.Build(func(q *store.Select) {
		q.Eq("project_id", projectID).OrderBy(TasksTable.Column("id"))
	}))
}
