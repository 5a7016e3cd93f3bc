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

// CompletionResult reports the outcome of a task completion. Completed is
// true when every item auto-resolved and the task was deleted; otherwise
// Flagged lists the items held back for approval.
type CompletionResult struct {
	Completed bool             `json:"completed"`
	Flagged   []model.TaskItem `json:"flagged,omitempty"`
}

// CompleteTask reconciles every item of a task in one transaction. Items
// whose counted quantity equals the expected quantity commit their count to
// the catalog and are removed; all others (including never-counted items)
// are flagged for approval. If nothing was flagged, the task is deleted;
// otherwise it moves to await_approval.
func CompleteTask(ctx context.Context, d *db.DB, id int64) (*CompletionResult, error) {
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var status model.TaskStatus
	err = tx.QueryRowContext(ctx,
		d.Rebind(`SELECT status FROM tasks WHERE id = ?`+d.ForUpdate()), id,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: task %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("checking task: %w", err)
	}

	if !status.CanTransition(model.TaskCompleted) {
		return nil, fmt.Errorf("%w: cannot complete task in status %s", ErrInvalidTransition, status)
	}

	var items []model.TaskItem
	err = tx.SelectContext(ctx, &items,
		d.Rebind(`SELECT id, task_id, gtin, expected, counted, status
		          FROM task_items WHERE task_id = ? ORDER BY id`+d.ForUpdate()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("loading task items: %w", err)
	}

	var flagged []model.TaskItem
	for _, it := range items {
		if it.Counted != nil && *it.Counted == it.Expected {
			// Auto-resolve: commit the count, drop the item.
			_, err := tx.ExecContext(ctx,
				d.Rebind(`UPDATE products SET quantity = ? WHERE gtin = ?`),
				*it.Counted, it.GTIN,
			)
			if err != nil {
				return nil, fmt.Errorf("committing count for %s: %w", it.GTIN, err)
			}
			if _, err := tx.ExecContext(ctx, d.Rebind(`DELETE FROM task_items WHERE id = ?`), it.ID); err != nil {
				return nil, fmt.Errorf("removing resolved item %s: %w", it.GTIN, err)
			}
			continue
		}

		// Mismatch or missing count: hold for approval, catalog untouched.
		_, err := tx.ExecContext(ctx,
			d.Rebind(`UPDATE task_items SET status = ? WHERE id = ?`),
			model.ItemAwaitApproval, it.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("flagging item %s: %w", it.GTIN, err)
		}
		it.Status = model.ItemAwaitApproval
		flagged = append(flagged, it)
	}

	if len(flagged) == 0 {
		if _, err := tx.ExecContext(ctx, d.Rebind(`DELETE FROM tasks WHERE id = ?`), id); err != nil {
			return nil, fmt.Errorf("removing completed task: %w", err)
		}
	} else {
		_, err := tx.ExecContext(ctx,
			d.Rebind(`UPDATE tasks SET status = ? WHERE id = ?`),
			model.TaskAwaitApproval, id,
		)
		if err != nil {
			return nil, fmt.Errorf("updating task status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing completion: %w", err)
	}

	return &CompletionResult{Completed: len(flagged) == 0, Flagged: flagged}, nil
}

// ApproveItem accepts a flagged item's counted quantity: the count is
// committed to the catalog and the item removed. If that was the task's
// last item, the task is removed too.
func ApproveItem(ctx context.Context, d *db.DB, taskID int64, gtin string) error {
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var it model.TaskItem
	err = tx.QueryRowContext(ctx,
		d.Rebind(`SELECT id, expected, counted, status FROM task_items
		          WHERE task_id = ? AND gtin = ?`+d.ForUpdate()), taskID, gtin,
	).Scan(&it.ID, &it.Expected, &it.Counted, &it.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: item %s in task %d", ErrNotFound, gtin, taskID)
	}
	if err != nil {
		return fmt.Errorf("checking item: %w", err)
	}

	if !it.Status.CanTransition(model.ItemApproved) {
		return fmt.Errorf("%w: cannot approve item in status %s", ErrInvalidTransition, it.Status)
	}
	if it.Counted == nil {
		return fmt.Errorf("%w: item %s has no counted quantity", ErrValidation, gtin)
	}

	_, err = tx.ExecContext(ctx,
		d.Rebind(`UPDATE products SET quantity = ? WHERE gtin = ?`),
		*it.Counted, gtin,
	)
	if err != nil {
		return fmt.Errorf("committing count for %s: %w", gtin, err)
	}

	if _, err := tx.ExecContext(ctx, d.Rebind(`DELETE FROM task_items WHERE id = ?`), it.ID); err != nil {
		return fmt.Errorf("removing approved item: %w", err)
	}

	var remaining int
	err = tx.QueryRowContext(ctx,
		d.Rebind(`SELECT COUNT(*) FROM task_items WHERE task_id = ?`), taskID,
	).Scan(&remaining)
	if err != nil {
		return fmt.Errorf("counting remaining items: %w", err)
	}
	if remaining == 0 {
		if _, err := tx.ExecContext(ctx, d.Rebind(`DELETE FROM tasks WHERE id = ?`), taskID); err != nil {
			return fmt.Errorf("removing emptied task: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing approval: %w", err)
	}
	return nil
}

// RecheckTask spins off a fresh open task for the given disputed products
// and removes them from the source task, deleting the source task if that
// emptied it. Returns the new task's id.
func RecheckTask(ctx context.Context, d *db.DB, taskID int64, location string, items []TaskItemInput) (int64, error) {
	if strings.TrimSpace(location) == "" {
		return 0, fmt.Errorf("%w: location is required", ErrValidation)
	}
	if err := validateTaskItems(items); err != nil {
		return 0, err
	}

	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var srcID int64
	err = tx.QueryRowContext(ctx,
		d.Rebind(`SELECT id FROM tasks WHERE id = ?`+d.ForUpdate()), taskID,
	).Scan(&srcID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
	}
	if err != nil {
		return 0, fmt.Errorf("checking task: %w", err)
	}

	// Every disputed product must be an item of the source task.
	gtins := make([]string, len(items))
	for i, it := range items {
		gtins[i] = it.GTIN
	}
	query, args, err := sqlx.In(`SELECT gtin FROM task_items WHERE task_id = ? AND gtin IN (?)`, taskID, gtins)
	if err != nil {
		return 0, fmt.Errorf("building item query: %w", err)
	}
	var present []string
	if err := tx.SelectContext(ctx, &present, d.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("checking task items: %w", err)
	}
	inTask := make(map[string]bool, len(present))
	for _, g := range present {
		inTask[g] = true
	}
	for _, g := range gtins {
		if !inTask[g] {
			return 0, fmt.Errorf("%w: product %s is not part of task %d", ErrValidation, g, taskID)
		}
	}

	newID, err := insertTask(ctx, tx, d, CreateTaskInput{Location: location, Items: items})
	if err != nil {
		return 0, err
	}

	query, args, err = sqlx.In(`DELETE FROM task_items WHERE task_id = ? AND gtin IN (?)`, taskID, gtins)
	if err != nil {
		return 0, fmt.Errorf("building delete query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, d.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("removing rechecked items: %w", err)
	}

	var remaining int
	err = tx.QueryRowContext(ctx,
		d.Rebind(`SELECT COUNT(*) FROM task_items WHERE task_id = ?`), taskID,
	).Scan(&remaining)
	if err != nil {
		return 0, fmt.Errorf("counting remaining items: %w", err)
	}
	if remaining == 0 {
		if _, err := tx.ExecContext(ctx, d.Rebind(`DELETE FROM tasks WHERE id = ?`), taskID); err != nil {
			return 0, fmt.Errorf("removing emptied task: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing recheck: %w", err)
	}
	return newID, nil
}
