package entities

import (
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
)

// Ticket - строка helpdesk_ticket вместе с данными для списка.
type Ticket struct {
	ID               uint64      `json:"id"`
	Title            string      `json:"title"`
	QueueID          uint64      `json:"queue_id"`
	QueueTitle       string      `json:"queue_title"`
	QueueSlug        string      `json:"queue_slug"`
	Status           int         `json:"status"`
	Priority         int         `json:"priority"`
	Created          time.Time   `json:"created"`
	DueDate          null.Time   `json:"due_date"`
	AssignedToID     null.Int64  `json:"assigned_to_id"`
	AssignedToName   null.String `json:"assigned_to"`
	SubmitterEmail   null.String `json:"submitter_email"`
	KBItemID         null.Int64  `json:"kbitem_id"`
	KBItemTitle      null.String `json:"kbitem"`
	TimeSpentSeconds int64       `json:"time_spent_seconds"`
}

// TicketForURL - "<queue-slug>-<id>", так тикет ищется из шапки.
func (t Ticket) TicketForURL() string {
	return fmt.Sprintf("%s-%d", t.QueueSlug, t.ID)
}

// StaffURL - страница тикета для сотрудника.
func (t Ticket) StaffURL() string {
	return fmt.Sprintf("/tickets/%d/", t.ID)
}
