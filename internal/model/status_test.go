package model

import "testing"

func TestTaskStatusValid(t *testing.T) {
	valid := []TaskStatus{TaskOpen, TaskInProgress, TaskAwaitApproval, TaskApproved, TaskCompleted, TaskRecheck}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected %s to be valid", s)
		}
	}

	if TaskStatus("done").Valid() {
		t.Error("expected 'done' to be invalid")
	}
	if TaskStatus("").Valid() {
		t.Error("expected empty status to be invalid")
	}
}

func TestTaskTransitions(t *testing.T) {
	cases := []struct {
		from    TaskStatus
		to      TaskStatus
		allowed bool
	}{
		{TaskOpen, TaskInProgress, true},
		{TaskOpen, TaskCompleted, true},
		{TaskOpen, TaskAwaitApproval, true},
		{TaskInProgress, TaskInProgress, true},
		{TaskInProgress, TaskOpen, true},
		{TaskInProgress, TaskCompleted, true},
		{TaskAwaitApproval, TaskCompleted, true},
		{TaskAwaitApproval, TaskApproved, true},
		{TaskAwaitApproval, TaskInProgress, false},
		{TaskRecheck, TaskInProgress, true},
		{TaskCompleted, TaskOpen, false},
		{TaskApproved, TaskInProgress, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", c.from, c.to, c.allowed, got)
		}
	}
}

func TestItemStatusValid(t *testing.T) {
	valid := []ItemStatus{ItemOpen, ItemCounted, ItemAwaitApproval, ItemApproved, ItemRecheck}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected %s to be valid", s)
		}
	}

	if ItemStatus("resolved").Valid() {
		t.Error("expected 'resolved' to be invalid")
	}
}

func TestItemTransitions(t *testing.T) {
	cases := []struct {
		from    ItemStatus
		to      ItemStatus
		allowed bool
	}{
		{ItemOpen, ItemCounted, true},
		{ItemOpen, ItemAwaitApproval, true},
		{ItemOpen, ItemApproved, false},
		{ItemCounted, ItemCounted, true},
		{ItemCounted, ItemAwaitApproval, true},
		{ItemCounted, ItemApproved, false},
		{ItemAwaitApproval, ItemApproved, true},
		{ItemAwaitApproval, ItemCounted, true},
		{ItemApproved, ItemCounted, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", c.from, c.to, c.allowed, got)
		}
	}
}
