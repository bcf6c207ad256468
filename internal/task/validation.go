package task

import "strings"

const (
	msgTitleRequired       = "Title is required"
	msgDescriptionRequired = "Description is required"
	msgStartRequired       = "Start date is required"
	msgEndRequired         = "End date is required"
	msgEndBeforeStart      = "End date must be after start date"
	msgInvalidDate         = "Invalid date"
	msgInvalidStatus       = "Invalid status"
	msgInvalidPriority     = "Invalid priority"
	msgLinkRequired        = "Link is required"
	msgLinkInvalid         = "Invalid URL"
)

// Draft - данные формы создания задачи. Ссылки на pull request'ы
// хранятся списком и склеиваются только при отправке.
type Draft struct {
	Title        string
	Description  string
	Status       Status
	Priority     Priority
	StartDate    string
	EndDate      string
	JiraLink     string
	PullRequests []string
	UserID       int64
	CreatedBy    int64
}

// NewDraft возвращает форму со значениями по умолчанию
func NewDraft(userID int64) Draft {
	return Draft{
		Status:    StatusPending,
		Priority:  PriorityLow,
		UserID:    userID,
		CreatedBy: userID,
	}
}

// Validate проверяет обязательные поля, порядок дат и ссылки.
// Возвращает *ValidationError или nil.
func (d Draft) Validate() error {
	verr := &ValidationError{
		Fields: make(map[string]string),
		Links:  make(map[int]string),
	}

	if strings.TrimSpace(d.Title) == "" {
		verr.Fields["title"] = msgTitleRequired
	}
	if strings.TrimSpace(d.Description) == "" {
		verr.Fields["description"] = msgDescriptionRequired
	}

	start, startErr := ParseDate(d.StartDate)
	if strings.TrimSpace(d.StartDate) == "" {
		verr.Fields["start_date"] = msgStartRequired
	} else if startErr != nil {
		verr.Fields["start_date"] = msgInvalidDate
	}

	end, endErr := ParseDate(d.EndDate)
	switch {
	case strings.TrimSpace(d.EndDate) == "":
		verr.Fields["end_date"] = msgEndRequired
	case endErr != nil:
		verr.Fields["end_date"] = msgInvalidDate
	case startErr == nil && end.Before(start):
		verr.Fields["end_date"] = msgEndBeforeStart
	}

	if d.Status != "" && !d.Status.Known() {
		verr.Fields["status"] = msgInvalidStatus
	}
	if d.Priority != "" {
		if _, ok := ParsePriority(string(d.Priority)); !ok {
			verr.Fields["priority"] = msgInvalidPriority
		}
	}

	for i, link := range d.PullRequests {
		if strings.TrimSpace(link) == "" {
			verr.Links[i] = msgLinkRequired
		} else if !strings.HasPrefix(link, "http") {
			verr.Links[i] = msgLinkInvalid
		}
	}

	if verr.empty() {
		return nil
	}
	return verr
}

// Task собирает запись для отправки в сервис задач (без id)
func (d Draft) Task() Task {
	status := d.Status
	if status == "" {
		status = StatusPending
	}
	priority := d.Priority
	if priority == "" {
		priority = PriorityLow
	}
	t := Task{
		Title:       d.Title,
		Description: d.Description,
		Status:      NormalizeStatus(string(status)),
		Priority:    priority,
		UserID:      d.UserID,
		CreatedBy:   d.CreatedBy,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		JiraLink:    d.JiraLink,
	}
	t.SetPullRequests(d.PullRequests)
	return t
}
