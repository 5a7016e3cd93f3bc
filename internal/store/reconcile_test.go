package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/inventura/internal/db"
	"github.com/erazemk/inventura/internal/model"
)

func TestCompleteAutoResolve(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	id, _ := CreateTask(ctx, database, CreateTaskInput{Location: "A1", Items: []TaskItemInput{{GTIN: "100", Expected: 100}}})
	RecordCounts(ctx, database, id, []CountInput{{GTIN: "100", Counted: 100}})

	result, err := CompleteTask(ctx, database, id)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if !result.Completed {
		t.Error("expected full completion")
	}
	if len(result.Flagged) != 0 {
		t.Errorf("expected no flagged items, got %d", len(result.Flagged))
	}

	// Task and item are gone, catalog holds the counted quantity.
	task, _ := GetTask(ctx, database, id)
	if task != nil {
		t.Errorf("expected task deleted, got %+v", task)
	}
	p, _ := GetProduct(ctx, database, "100")
	if p.Quantity != 100 {
		t.Errorf("expected quantity 100, got %d", p.Quantity)
	}
}

func TestCompleteFlagsMismatch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	id, _ := CreateTask(ctx, database, CreateTaskInput{Location: "A1", Items: []TaskItemInput{{GTIN: "100", Expected: 100}}})
	RecordCounts(ctx, database, id, []CountInput{{GTIN: "100", Counted: 90}})

	result, err := CompleteTask(ctx, database, id)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if result.Completed {
		t.Error("expected partial completion")
	}
	if len(result.Flagged) != 1 || result.Flagged[0].GTIN != "100" {
		t.Fatalf("expected item 100 flagged, got %v", result.Flagged)
	}
	if result.Flagged[0].Status != model.ItemAwaitApproval {
		t.Errorf("expected flagged item await_approval, got %s", result.Flagged[0].Status)
	}

	task, _ := GetTask(ctx, database, id)
	if task == nil || task.Status != model.TaskAwaitApproval {
		t.Fatalf("expected task await_approval, got %+v", task)
	}
	if len(task.Items) != 1 || task.Items[0].Status != model.ItemAwaitApproval {
		t.Errorf("expected one flagged item, got %+v", task.Items)
	}

	// Catalog untouched on mismatch.
	p, _ := GetProduct(ctx, database, "100")
	if p.Quantity != 100 {
		t.Errorf("expected quantity unchanged at 100, got %d", p.Quantity)
	}
}

func TestCompleteMixedOutcome(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	id, _ := CreateTask(ctx, database, CreateTaskInput{
		Location: "A1",
		Items:    []TaskItemInput{{GTIN: "100", Expected: 100}, {GTIN: "200", Expected: 150}},
	})
	RecordCounts(ctx, database, id, []CountInput{
		{GTIN: "100", Counted: 100},
		{GTIN: "200", Counted: 140},
	})

	result, err := CompleteTask(ctx, database, id)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if result.Completed {
		t.Error("expected partial completion")
	}

	task, _ := GetTask(ctx, database, id)
	if task == nil || task.Status != model.TaskAwaitApproval {
		t.Fatalf("expected task await_approval, got %+v", task)
	}
	if len(task.Items) != 1 || task.Items[0].GTIN != "200" {
		t.Fatalf("expected only item 200 left, got %+v", task.Items)
	}

	// Matching item committed, mismatched one did not.
	p100, _ := GetProduct(ctx, database, "100")
	if p100.Quantity != 100 {
		t.Errorf("expected 100 committed, got %d", p100.Quantity)
	}
	p200, _ := GetProduct(ctx, database, "200")
	if p200.Quantity != 150 {
		t.Errorf("expected 200 unchanged at 150, got %d", p200.Quantity)
	}
}

func TestCompleteTreatsMissingCountAsMismatch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	id, _ := CreateTask(ctx, database, CreateTaskInput{Location: "A1", Items: []TaskItemInput{{GTIN: "100", Expected: 100}}})

	// Complete without ever counting.
	result, err := CompleteTask(ctx, database, id)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if result.Completed {
		t.Error("expected uncounted item to block completion")
	}

	task, _ := GetTask(ctx, database, id)
	if task == nil || task.Items[0].Status != model.ItemAwaitApproval {
		t.Fatalf("expected uncounted item flagged, got %+v", task)
	}
	if task.Items[0].Counted != nil {
		t.Errorf("expected counted still nil, got %d", *task.Items[0].Counted)
	}
}

func TestCompleteNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := CompleteTask(context.Background(), database, 12345)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestApproveClosesEmptiedTask(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	id, _ := CreateTask(ctx, database, CreateTaskInput{Location: "A1", Items: []TaskItemInput{{GTIN: "100", Expected: 100}}})
	RecordCounts(ctx, database, id, []CountInput{{GTIN: "100", Counted: 90}})
	CompleteTask(ctx, database, id)

	if err := ApproveItem(ctx, database, id, "100"); err != nil {
		t.Fatalf("ApproveItem: %v", err)
	}

	// Counted quantity committed, item and task gone.
	p, _ := GetProduct(ctx, database, "100")
	if p.Quantity != 90 {
		t.Errorf("expected quantity 90, got %d", p.Quantity)
	}
	task, _ := GetTask(ctx, database, id)
	if task != nil {
		t.Errorf("expected task deleted, got %+v", task)
	}
}

func TestApproveKeepsTaskWithRemainingItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	id, _ := CreateTask(ctx, database, CreateTaskInput{
		Location: "A1",
		Items:    []TaskItemInput{{GTIN: "100", Expected: 100}, {GTIN: "200", Expected: 150}},
	})
	RecordCounts(ctx, database, id, []CountInput{
		{GTIN: "100", Counted: 90},
		{GTIN: "200", Counted: 140},
	})
	CompleteTask(ctx, database, id)

	if err := ApproveItem(ctx, database, id, "100"); err != nil {
		t.Fatalf("ApproveItem: %v", err)
	}

	task, _ := GetTask(ctx, database, id)
	if task == nil || task.Status != model.TaskAwaitApproval {
		t.Fatalf("expected task still await_approval, got %+v", task)
	}
	if len(task.Items) != 1 || task.Items[0].GTIN != "200" {
		t.Errorf("expected item 200 left, got %+v", task.Items)
	}
}

func TestApproveErrors(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	id, _ := CreateTask(ctx, database, CreateTaskInput{Location: "A1", Items: []TaskItemInput{{GTIN: "100", Expected: 100}}})

	if err := ApproveItem(ctx, database, id, "999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found for missing item, got %v", err)
	}
	if err := ApproveItem(ctx, database, 12345, "100"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found for missing task, got %v", err)
	}

	// An item that was never flagged cannot be approved.
	if err := ApproveItem(ctx, database, id, "100"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected invalid transition for open item, got %v", err)
	}
}

func TestApproveUncountedItemRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	id, _ := CreateTask(ctx, database, CreateTaskInput{Location: "A1", Items: []TaskItemInput{{GTIN: "100", Expected: 100}}})

	// Completion flags the uncounted item; approving it has no quantity to commit.
	CompleteTask(ctx, database, id)
	if err := ApproveItem(ctx, database, id, "100"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error approving an uncounted item, got %v", err)
	}

	// Catalog and task untouched.
	p, _ := GetProduct(ctx, database, "100")
	if p.Quantity != 100 {
		t.Errorf("expected quantity unchanged, got %d", p.Quantity)
	}
	task, _ := GetTask(ctx, database, id)
	if task == nil || len(task.Items) != 1 {
		t.Errorf("expected task intact, got %+v", task)
	}
}

func TestRecheckSplitsTask(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	id, _ := CreateTask(ctx, database, CreateTaskInput{
		Location: "A1",
		Items:    []TaskItemInput{{GTIN: "100", Expected: 100}, {GTIN: "200", Expected: 150}},
	})
	RecordCounts(ctx, database, id, []CountInput{
		{GTIN: "100", Counted: 90},
		{GTIN: "200", Counted: 140},
	})
	CompleteTask(ctx, database, id)

	newID, err := RecheckTask(ctx, database, id, "A1", []TaskItemInput{{GTIN: "100", Expected: 100}})
	if err != nil {
		t.Fatalf("RecheckTask: %v", err)
	}
	if newID == id {
		t.Fatal("expected a new task id")
	}

	// The new task holds only the disputed product, fresh and open.
	fresh, _ := GetTask(ctx, database, newID)
	if fresh == nil || fresh.Status != model.TaskOpen {
		t.Fatalf("expected new open task, got %+v", fresh)
	}
	if len(fresh.Items) != 1 || fresh.Items[0].GTIN != "100" {
		t.Fatalf("expected only item 100, got %+v", fresh.Items)
	}
	if fresh.Items[0].Status != model.ItemOpen || fresh.Items[0].Counted != nil {
		t.Errorf("expected fresh open item, got %+v", fresh.Items[0])
	}

	// The disputed product left the original task.
	src, _ := GetTask(ctx, database, id)
	if src == nil || len(src.Items) != 1 || src.Items[0].GTIN != "200" {
		t.Fatalf("expected original task with only item 200, got %+v", src)
	}
}

func TestRecheckDeletesEmptiedSource(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	id, _ := CreateTask(ctx, database, CreateTaskInput{Location: "A1", Items: []TaskItemInput{{GTIN: "100", Expected: 100}}})
	RecordCounts(ctx, database, id, []CountInput{{GTIN: "100", Counted: 90}})
	CompleteTask(ctx, database, id)

	newID, err := RecheckTask(ctx, database, id, "A1", []TaskItemInput{{GTIN: "100", Expected: 100}})
	if err != nil {
		t.Fatalf("RecheckTask: %v", err)
	}

	src, _ := GetTask(ctx, database, id)
	if src != nil {
		t.Errorf("expected emptied source task deleted, got %+v", src)
	}
	fresh, _ := GetTask(ctx, database, newID)
	if fresh == nil {
		t.Error("expected new task to exist")
	}
}

func TestRecheckErrors(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	id, _ := CreateTask(ctx, database, CreateTaskInput{Location: "A1", Items: []TaskItemInput{{GTIN: "100", Expected: 100}}})

	if _, err := RecheckTask(ctx, database, 12345, "A1", []TaskItemInput{{GTIN: "100", Expected: 100}}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found for missing task, got %v", err)
	}
	if _, err := RecheckTask(ctx, database, id, "", []TaskItemInput{{GTIN: "100", Expected: 100}}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for missing location, got %v", err)
	}
	if _, err := RecheckTask(ctx, database, id, "A1", nil); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for empty items, got %v", err)
	}

	// Products not part of the source task are rejected.
	if _, err := RecheckTask(ctx, database, id, "A1", []TaskItemInput{{GTIN: "200", Expected: 150}}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for foreign product, got %v", err)
	}
}
