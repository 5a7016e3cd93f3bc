package model

import "time"

// Task is one assignment to recount products at a location. A task owns at
// least one item while it exists; a task whose last item is resolved is
// deleted rather than kept empty.
type Task struct {
	ID           int64      `db:"id" json:"id"`
	Name         string     `db:"name" json:"name,omitempty"`
	Location     string     `db:"location" json:"location"`
	Priority     string     `db:"priority" json:"priority,omitempty"`
	Comment      string     `db:"comment" json:"comment,omitempty"`
	AssigneeID   *string    `db:"assignee_id" json:"assignee_id,omitempty"`
	AssigneeName *string    `db:"assignee_name" json:"assignee_name,omitempty"`
	Status       TaskStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`

	// Items is populated by list/get queries, not stored on the task row.
	Items []TaskItem `db:"-" json:"items"`
}

// TaskItem is one product's expected-vs-counted record within a task.
// Counted stays nil until the count operation records a quantity.
type TaskItem struct {
	ID       int64      `db:"id" json:"id"`
	TaskID   int64      `db:"task_id" json:"task_id"`
	GTIN     string     `db:"gtin" json:"gtin"`
	Expected int        `db:"expected" json:"expected_quantity"`
	Counted  *int       `db:"counted" json:"counted_quantity"`
	Status   ItemStatus `db:"status" json:"status"`

	// Joined from the catalog (not always populated).
	ProductName string `db:"product_name" json:"product_name,omitempty"`
}
