package task

import (
	"reflect"
	"testing"
	"time"
)

func sampleTasks() []Task {
	return []Task{
		{ID: 1, Title: "a", Status: "pending", EndDate: "2024-01-01"},
		{ID: 2, Title: "b", Status: "Completed", EndDate: "2024-01-15T10:30:00"},
		{ID: 3, Title: "c", Status: "In Progress", EndDate: "2024-02-01"},
		{ID: 4, Title: "d", Status: "completed", EndDate: "2024-01-31T23:59:00Z"},
		{ID: 5, Title: "e", Status: "overdue", EndDate: ""},
	}
}

func ids(tasks []Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestDisplayAllReturnsCollectionUnchanged(t *testing.T) {
	tasks := sampleTasks()
	got := Display(tasks, StatusAll, DateRange{})
	if !reflect.DeepEqual(got, tasks) {
		t.Fatalf("expected collection unchanged, got %+v", got)
	}
	got[0].Title = "mutated"
	if tasks[0].Title != "a" {
		t.Fatalf("display must not share backing array with the collection")
	}
}

func TestDisplayByStatus(t *testing.T) {
	tests := []struct {
		filter Status
		want   []int64
	}{
		{"completed", []int64{2, 4}},
		{"COMPLETED", []int64{2, 4}},
		{"in_progress", []int64{3}},
		{"in progress", []int64{3}},
		{"pending", []int64{1}},
		{"cancelled", []int64{}},
	}
	for _, tt := range tests {
		got := ids(Display(sampleTasks(), tt.filter, DateRange{}))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("filter %q: expected %v, got %v", tt.filter, tt.want, got)
		}
	}
}

func TestDisplayDateRangeInclusive(t *testing.T) {
	tasks := []Task{
		{ID: 1, Status: "pending", EndDate: "2024-01-01"},
		{ID: 2, Status: "pending", EndDate: "2024-01-15"},
		{ID: 3, Status: "pending", EndDate: "2024-02-01"},
	}
	r := DateRange{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	got := ids(Display(tasks, StatusAll, r))
	if !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Fatalf("expected [1 2], got %v", got)
	}
}

func TestDisplayComposesStatusAndDates(t *testing.T) {
	r := DateRange{To: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)}
	got := ids(Display(sampleTasks(), StatusCompleted, r))
	if !reflect.DeepEqual(got, []int64{2, 4}) {
		t.Fatalf("expected [2 4], got %v", got)
	}

	// задача без даты окончания не проходит активный диапазон
	got = ids(Display(sampleTasks(), StatusOverdue, r))
	if len(got) != 0 {
		t.Fatalf("expected no tasks, got %v", got)
	}
}

func TestStatusCounts(t *testing.T) {
	counts := StatusCounts(sampleTasks())
	want := map[Status]int{
		StatusAll:        5,
		StatusPending:    1,
		StatusInProgress: 1,
		StatusCompleted:  2,
		StatusOverdue:    1,
	}
	if !reflect.DeepEqual(counts, want) {
		t.Fatalf("expected %v, got %v", want, counts)
	}
}

func TestSplitLinks(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"string", nil},
		{"https://a/1", []string{"https://a/1"}},
		{"https://a/1, https://a/2,,", []string{"https://a/1", "https://a/2"}},
	}
	for _, tt := range tests {
		got := SplitLinks(tt.raw)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitLinks(%q): expected %v, got %v", tt.raw, tt.want, got)
		}
	}
}

func TestStatusLabel(t *testing.T) {
	if got := Status("in_progress").Label(); got != "IN PROGRESS" {
		t.Fatalf("unexpected label %q", got)
	}
	if !Status("In-Progress").Known() {
		t.Fatalf("expected separator style to be ignored")
	}
}
