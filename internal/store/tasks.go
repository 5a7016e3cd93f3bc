package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/inventura/internal/db"
	"github.com/erazemk/inventura/internal/model"
)

// TaskItemInput is one product line in a task creation or recheck request.
type TaskItemInput struct {
	GTIN     string `json:"gtin"`
	Expected int    `json:"expected_quantity"`
}

// CountInput is one product line in a count recording request.
type CountInput struct {
	GTIN    string `json:"gtin"`
	Counted int    `json:"counted_quantity"`
}

// CreateTaskInput describes a new counting task.
type CreateTaskInput struct {
	Location string          `json:"location"`
	Name     string          `json:"name"`
	Priority string          `json:"priority"`
	Comment  string          `json:"comment"`
	Items    []TaskItemInput `json:"items"`
}

// CreateTask creates a task with one open item per input line, atomically.
// Unknown GTINs are rejected before any row is written.
func CreateTask(ctx context.Context, d *db.DB, in CreateTaskInput) (int64, error) {
	if strings.TrimSpace(in.Location) == "" {
		return 0, fmt.Errorf("%w: location is required", ErrValidation)
	}
	if err := validateTaskItems(in.Items); err != nil {
		return 0, err
	}

	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := verifyProducts(ctx, tx, d, in.Items); err != nil {
		return 0, err
	}

	id, err := insertTask(ctx, tx, d, in)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing task creation: %w", err)
	}
	return id, nil
}

// validateTaskItems checks an item list for creation or recheck.
func validateTaskItems(items []TaskItemInput) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrValidation)
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.GTIN == "" {
			return fmt.Errorf("%w: item gtin is required", ErrValidation)
		}
		if it.Expected < 0 {
			return fmt.Errorf("%w: expected quantity for %s must not be negative", ErrValidation, it.GTIN)
		}
		if seen[it.GTIN] {
			return fmt.Errorf("%w: duplicate item %s", ErrValidation, it.GTIN)
		}
		seen[it.GTIN] = true
	}
	return nil
}

// verifyProducts rejects item lists referencing GTINs missing from the catalog.
func verifyProducts(ctx context.Context, tx *sqlx.Tx, d *db.DB, items []TaskItemInput) error {
	gtins := make([]string, len(items))
	for i, it := range items {
		gtins[i] = it.GTIN
	}

	query, args, err := sqlx.In(`SELECT gtin FROM products WHERE gtin IN (?)`, gtins)
	if err != nil {
		return fmt.Errorf("building product query: %w", err)
	}

	var known []string
	if err := tx.SelectContext(ctx, &known, d.Rebind(query), args...); err != nil {
		return fmt.Errorf("checking products: %w", err)
	}

	exists := make(map[string]bool, len(known))
	for _, g := range known {
		exists[g] = true
	}
	for _, g := range gtins {
		if !exists[g] {
			return fmt.Errorf("%w: unknown product %s", ErrValidation, g)
		}
	}
	return nil
}

// insertTask inserts a task row and its items within an existing transaction.
func insertTask(ctx context.Context, tx *sqlx.Tx, d *db.DB, in CreateTaskInput) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		d.Rebind(`INSERT INTO tasks (location, name, priority, comment)
		          VALUES (?, ?, ?, ?) RETURNING id`),
		in.Location, in.Name, in.Priority, in.Comment,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating task: %w", err)
	}

	for _, it := range in.Items {
		_, err := tx.ExecContext(ctx,
			d.Rebind(`INSERT INTO task_items (task_id, gtin, expected) VALUES (?, ?, ?)`),
			id, it.GTIN, it.Expected,
		)
		if err != nil {
			return 0, fmt.Errorf("creating task item %s: %w", it.GTIN, err)
		}
	}
	return id, nil
}

// ListTasks returns all tasks with their item lists, each item joined with
// the product's display name. An empty status lists everything.
func ListTasks(ctx context.Context, d *db.DB, status model.TaskStatus) ([]model.Task, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	var tasks []model.Task
	var err error
	if status != "" {
		err = d.SelectContext(ctx, &tasks,
			d.Rebind(`SELECT id, name, location, priority, comment, assignee_id, assignee_name, status, created_at
			          FROM tasks WHERE status = ? ORDER BY created_at, id`), status,
		)
	} else {
		err = d.SelectContext(ctx, &tasks,
			`SELECT id, name, location, priority, comment, assignee_id, assignee_name, status, created_at
			 FROM tasks ORDER BY created_at, id`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	if len(tasks) == 0 {
		return tasks, nil
	}

	ids := make([]int64, len(tasks))
	byID := make(map[int64]*model.Task, len(tasks))
	for i := range tasks {
		tasks[i].Items = []model.TaskItem{}
		ids[i] = tasks[i].ID
		byID[tasks[i].ID] = &tasks[i]
	}

	query, args, err := sqlx.In(
		`SELECT ti.id, ti.task_id, ti.gtin, ti.expected, ti.counted, ti.status, p.name AS product_name
		 FROM task_items ti
		 JOIN products p ON p.gtin = ti.gtin
		 WHERE ti.task_id IN (?) ORDER BY ti.id`, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("building item query: %w", err)
	}

	var items []model.TaskItem
	if err := d.SelectContext(ctx, &items, d.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing task items: %w", err)
	}
	for _, it := range items {
		t := byID[it.TaskID]
		t.Items = append(t.Items, it)
	}
	return tasks, nil
}

// GetTask returns a task with its items, or nil if it does not exist.
func GetTask(ctx context.Context, d *db.DB, id int64) (*model.Task, error) {
	t := &model.Task{}
	err := d.GetContext(ctx, t,
		d.Rebind(`SELECT id, name, location, priority, comment, assignee_id, assignee_name, status, created_at
		          FROM tasks WHERE id = ?`), id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting task: %w", err)
	}

	t.Items = []model.TaskItem{}
	err = d.SelectContext(ctx, &t.Items,
		d.Rebind(`SELECT ti.id, ti.task_id, ti.gtin, ti.expected, ti.counted, ti.status, p.name AS product_name
		          FROM task_items ti
		          JOIN products p ON p.gtin = ti.gtin
		          WHERE ti.task_id = ? ORDER BY ti.id`), id,
	)
	if err != nil {
		return nil, fmt.Errorf("getting task items: %w", err)
	}
	return t, nil
}

// StartTask moves a task to in_progress and applies the assignee. Both
// assignee fields must be given together; absent assignee clears both.
// Re-starting an in-progress task overwrites the assignee.
func StartTask(ctx context.Context, d *db.DB, id int64, assigneeID, assigneeName *string) error {
	if (assigneeID == nil) != (assigneeName == nil) {
		return fmt.Errorf("%w: assignee id and name must be given together", ErrValidation)
	}

	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var status model.TaskStatus
	err = tx.QueryRowContext(ctx,
		d.Rebind(`SELECT status FROM tasks WHERE id = ?`+d.ForUpdate()), id,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: task %d", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("checking task: %w", err)
	}

	if !status.CanTransition(model.TaskInProgress) {
		return fmt.Errorf("%w: cannot start task in status %s", ErrInvalidTransition, status)
	}

	_, err = tx.ExecContext(ctx,
		d.Rebind(`UPDATE tasks SET status = ?, assignee_id = ?, assignee_name = ? WHERE id = ?`),
		model.TaskInProgress, assigneeID, assigneeName, id,
	)
	if err != nil {
		return fmt.Errorf("starting task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing task start: %w", err)
	}
	return nil
}

// UnassignTask resets a task to open and clears the assignee, regardless of
// its current status.
func UnassignTask(ctx context.Context, d *db.DB, id int64) error {
	res, err := d.ExecContext(ctx,
		d.Rebind(`UPDATE tasks SET status = ?, assignee_id = NULL, assignee_name = NULL WHERE id = ?`),
		model.TaskOpen, id,
	)
	if err != nil {
		return fmt.Errorf("unassigning task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking unassign result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: task %d", ErrNotFound, id)
	}
	return nil
}

// RecordCounts sets the counted quantity on the task's matching items and
// marks them counted, in one transaction. Input lines whose product is not
// part of the task are ignored; items not mentioned are left untouched.
func RecordCounts(ctx context.Context, d *db.DB, id int64, counts []CountInput) error {
	if len(counts) == 0 {
		return fmt.Errorf("%w: at least one count is required", ErrValidation)
	}
	for _, c := range counts {
		if c.GTIN == "" {
			return fmt.Errorf("%w: count gtin is required", ErrValidation)
		}
		if c.Counted < 0 {
			return fmt.Errorf("%w: counted quantity for %s must not be negative", ErrValidation, c.GTIN)
		}
	}

	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var taskID int64
	err = tx.QueryRowContext(ctx,
		d.Rebind(`SELECT id FROM tasks WHERE id = ?`+d.ForUpdate()), id,
	).Scan(&taskID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: task %d", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("checking task: %w", err)
	}

	for _, c := range counts {
		_, err := tx.ExecContext(ctx,
			d.Rebind(`UPDATE task_items SET counted = ?, status = ? WHERE task_id = ? AND gtin = ?`),
			c.Counted, model.ItemCounted, id, c.GTIN,
		)
		if err != nil {
			return fmt.Errorf("recording count for %s: %w", c.GTIN, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing counts: %w", err)
	}
	return nil
}

// DeleteTask removes a task and all its items. Deleting a missing task is a
// clean not-found, never a partial deletion.
func DeleteTask(ctx context.Context, d *db.DB, id int64) error {
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, d.Rebind(`DELETE FROM task_items WHERE task_id = ?`), id); err != nil {
		return fmt.Errorf("deleting task items: %w", err)
	}

	res, err := tx.ExecContext(ctx, d.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: task %d", ErrNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing task deletion: %w", err)
	}
	return nil
}
