package task

import (
	"errors"
	"testing"
)

func validDraft() Draft {
	d := NewDraft(7)
	d.Title = "Ship release"
	d.Description = "Cut the tag and publish notes"
	d.StartDate = "2024-03-01"
	d.EndDate = "2024-03-05"
	d.PullRequests = []string{"https://github.com/org/repo/pull/1", "http://git.local/pr/2"}
	return d
}

func TestDraftValidateOK(t *testing.T) {
	if err := validDraft().Validate(); err != nil {
		t.Fatalf("expected valid draft, got %v", err)
	}
}

func TestDraftValidateFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Draft)
		field  string
		msg    string
	}{
		{"title", func(d *Draft) { d.Title = "   " }, "title", msgTitleRequired},
		{"description", func(d *Draft) { d.Description = "" }, "description", msgDescriptionRequired},
		{"start", func(d *Draft) { d.StartDate = "" }, "start_date", msgStartRequired},
		{"end", func(d *Draft) { d.EndDate = "" }, "end_date", msgEndRequired},
		{"end before start", func(d *Draft) { d.EndDate = "2024-02-28" }, "end_date", msgEndBeforeStart},
		{"bad date", func(d *Draft) { d.StartDate = "soon" }, "start_date", msgInvalidDate},
		{"priority", func(d *Draft) { d.Priority = "urgent" }, "priority", msgInvalidPriority},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			err := d.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Fields[tt.field] != tt.msg {
				t.Fatalf("expected %s=%q, got %v", tt.field, tt.msg, verr.Fields)
			}
		})
	}
}

func TestDraftValidateLinks(t *testing.T) {
	d := validDraft()
	d.PullRequests = []string{"https://ok/1", "", "ftp://nope/2"}
	err := d.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Links) != 2 || verr.Links[1] != msgLinkRequired || verr.Links[2] != msgLinkInvalid {
		t.Fatalf("unexpected link errors: %v", verr.Links)
	}
	if len(verr.Fields) != 0 {
		t.Fatalf("unexpected field errors: %v", verr.Fields)
	}
}

func TestDraftTaskJoinsLinks(t *testing.T) {
	got := validDraft().Task()
	if got.PullRequestsLinks != "https://github.com/org/repo/pull/1,http://git.local/pr/2" {
		t.Fatalf("unexpected links %q", got.PullRequestsLinks)
	}
	if got.ID != 0 || got.UserID != 7 || got.CreatedBy != 7 {
		t.Fatalf("unexpected identifiers: %+v", got)
	}
	if got.Status != StatusPending || got.Priority != PriorityLow {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}
