package task

import "time"

// DateRange ограничивает отображаемые задачи по дате окончания.
// Нулевая граница означает отсутствие ограничения с этой стороны.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) Active() bool {
	return !r.From.IsZero() || !r.To.IsZero()
}

// Contains проверяет попадание даты в [From, To] с точностью до дня
func (r DateRange) Contains(t time.Time) bool {
	day := civilDay(t)
	if !r.From.IsZero() && day.Before(civilDay(r.From)) {
		return false
	}
	if !r.To.IsZero() && day.After(civilDay(r.To)) {
		return false
	}
	return true
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MatchStatus сравнивает статус задачи с фильтром без учёта регистра
// и вида разделителя. Фильтр "all" совпадает с любой задачей.
func MatchStatus(t Task, filter Status) bool {
	f := NormalizeStatus(string(filter))
	if f == StatusAll || f == "" {
		return true
	}
	return NormalizeStatus(string(t.Status)) == f
}

// Display возвращает подмножество задач для отображения. Исходный срез
// не изменяется; при фильтре "all" без диапазона дат возвращается копия
// в том же порядке.
func Display(tasks []Task, status Status, dates DateRange) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !MatchStatus(t, status) {
			continue
		}
		if dates.Active() {
			end, err := t.End()
			if err != nil || !dates.Contains(end) {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// StatusCounts считает задачи по каждому известному статусу плюс "all"
func StatusCounts(tasks []Task) map[Status]int {
	counts := make(map[Status]int, len(Statuses)+1)
	counts[StatusAll] = len(tasks)
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, t := range tasks {
		s := NormalizeStatus(string(t.Status))
		if _, ok := counts[s]; ok && s != StatusAll {
			counts[s]++
		}
	}
	return counts
}
