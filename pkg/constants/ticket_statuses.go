package constants

import "soporte/pkg/helpdeskquery"

type Choice struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// --- СТАТУСЫ ТИКЕТОВ (совпадают со значениями в helpdesk_ticket.status) ---
var StatusChoices = []Choice{
	{Value: helpdeskquery.StatusOpen, Label: "Open"},
	{Value: helpdeskquery.StatusReopened, Label: "Reopened"},
	{Value: helpdeskquery.StatusResolved, Label: "Resolved"},
	{Value: helpdeskquery.StatusClosed, Label: "Closed"},
	{Value: helpdeskquery.StatusDuplicate, Label: "Duplicate"},
}

var PriorityChoices = []Choice{
	{Value: 1, Label: "1. Critical"},
	{Value: 2, Label: "2. High"},
	{Value: 3, Label: "3. Normal"},
	{Value: 4, Label: "4. Low"},
	{Value: 5, Label: "5. Very Low"},
}

func StatusLabel(status int) string {
	return choiceLabel(StatusChoices, status)
}

func PriorityLabel(priority int) string {
	return choiceLabel(PriorityChoices, priority)
}

// PriorityRowClass - CSS-класс строки таблицы по приоритету.
func PriorityRowClass(priority int) string {
	switch priority {
	case 1:
		return "danger"
	case 2:
		return "warning"
	case 5:
		return "success"
	}
	return ""
}

func choiceLabel(choices []Choice, value int) string {
	for _, c := range choices {
		if c.Value == value {
			return c.Label
		}
	}
	return ""
}
