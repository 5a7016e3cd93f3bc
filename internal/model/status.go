package model

// TaskStatus is the lifecycle state of a counting task.
type TaskStatus string

// Task statuses. Completed and Approved are result states: a fully
// completed or fully approved task is deleted, so neither is ever stored.
const (
	TaskOpen          TaskStatus = "open"
	TaskInProgress    TaskStatus = "in_progress"
	TaskAwaitApproval TaskStatus = "await_approval"
	TaskApproved      TaskStatus = "approved"
	TaskCompleted     TaskStatus = "completed"
	TaskRecheck       TaskStatus = "recheck"
)

// taskTransitions lists the allowed next states per current state.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskOpen:          {TaskInProgress, TaskAwaitApproval, TaskCompleted},
	TaskInProgress:    {TaskInProgress, TaskOpen, TaskAwaitApproval, TaskCompleted},
	TaskAwaitApproval: {TaskAwaitApproval, TaskCompleted, TaskApproved, TaskOpen},
	TaskRecheck:       {TaskInProgress, TaskOpen, TaskAwaitApproval, TaskCompleted},
}

// Valid reports whether s is a member of the closed task status set.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskOpen, TaskInProgress, TaskAwaitApproval, TaskApproved, TaskCompleted, TaskRecheck:
		return true
	}
	return false
}

// CanTransition reports whether a task in state s may move to state to.
func (s TaskStatus) CanTransition(to TaskStatus) bool {
	for _, next := range taskTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// ItemStatus is the reconciliation state of a single task item.
type ItemStatus string

// Item statuses. Approved is a result state: approving an item commits its
// count and deletes the row, so it is never stored.
const (
	ItemOpen          ItemStatus = "open"
	ItemCounted       ItemStatus = "counted"
	ItemAwaitApproval ItemStatus = "await_approval"
	ItemApproved      ItemStatus = "approved"
	ItemRecheck       ItemStatus = "recheck"
)

var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemOpen:          {ItemCounted, ItemAwaitApproval},
	ItemCounted:       {ItemCounted, ItemAwaitApproval},
	ItemAwaitApproval: {ItemCounted, ItemApproved},
	ItemRecheck:       {ItemCounted, ItemAwaitApproval},
}

// Valid reports whether s is a member of the closed item status set.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemOpen, ItemCounted, ItemAwaitApproval, ItemApproved, ItemRecheck:
		return true
	}
	return false
}

// CanTransition reports whether an item in state s may move to state to.
func (s ItemStatus) CanTransition(to ItemStatus) bool {
	for _, next := range itemTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}
