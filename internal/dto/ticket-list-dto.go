package dto

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xeonx/timeago"

	"soporte/internal/entities"
	"soporte/pkg/constants"
	"soporte/pkg/helpdeskquery"
)

// ForcedOrderColumn - индекс колонки, по которой сервер всегда сортирует
// DataTables, что бы ни прислал клиент.
const ForcedOrderColumn = "2"

const (
	DefaultDatatablesLength = 25
	MaxDatatablesLength     = 1000
)

type DatatablesRequestDTO struct {
	Draw        int    `json:"draw" validate:"gte=0"`
	Start       int    `json:"start" validate:"gte=0"`
	Length      int    `json:"length" validate:"gte=0,lte=1000"`
	SearchValue string `json:"search_value"`
	OrderColumn string `json:"order_column" validate:"required,numeric"`
	OrderDir    string `json:"order_dir" validate:"sort_dir"`
}

func NewDatatablesRequestDTO() DatatablesRequestDTO {
	return DatatablesRequestDTO{
		Length:      DefaultDatatablesLength,
		OrderColumn: "5",
		OrderDir:    "asc",
	}
}

// Normalize: length -1 у DataTables значит "все строки", ограничиваем сверху.
// length 0 остаётся нулём: пустая страница, но со счётчиками.
func (r *DatatablesRequestDTO) Normalize() {
	if r.Length < 0 || r.Length > MaxDatatablesLength {
		r.Length = MaxDatatablesLength
	}
	if r.OrderColumn == "" {
		r.OrderColumn = "5"
	}
	if r.OrderDir == "" {
		r.OrderDir = "asc"
	}
}

// QueryTokenParamDTO - токен запроса из пути.
type QueryTokenParamDTO struct {
	Query string `validate:"query_token"`
}

type QueueRefDTO struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

type DatatablesTicketRowDTO struct {
	Ticket        string      `json:"ticket"`
	ID            uint64      `json:"id"`
	Priority      int         `json:"priority"`
	Title         string      `json:"title"`
	Queue         QueueRefDTO `json:"queue"`
	Status        string      `json:"status"`
	Created       string      `json:"created"`
	DueDate       string      `json:"due_date"`
	AssignedTo    string      `json:"assigned_to"`
	Submitter     string      `json:"submitter"`
	RowClass      string      `json:"row_class"`
	TimeSpent     string      `json:"time_spent"`
	KBItem        string      `json:"kbitem"`
	EstimatedTime string      `json:"tiempoestimado"`
}

type DatatablesResponseDTO struct {
	Data            []DatatablesTicketRowDTO `json:"data"`
	RecordsFiltered uint64                   `json:"recordsFiltered"`
	RecordsTotal    uint64                   `json:"recordsTotal"`
	Draw            int                      `json:"draw"`
}

func NewDatatablesTicketRow(t entities.Ticket, now time.Time) DatatablesTicketRowDTO {
	row := DatatablesTicketRowDTO{
		Ticket:     fmt.Sprintf("%d [%s]", t.ID, t.TicketForURL()),
		ID:         t.ID,
		Priority:   t.Priority,
		Title:      t.Title,
		Queue:      QueueRefDTO{ID: t.QueueID, Title: t.QueueTitle},
		Status:     constants.StatusLabel(t.Status),
		Created:    timeago.English.FormatReference(t.Created, now),
		AssignedTo: "None",
		Submitter:  t.SubmitterEmail.String,
		RowClass:   constants.PriorityRowClass(t.Priority),
		TimeSpent:  FormatTimeSpent(t.TimeSpentSeconds),
		KBItem:     t.KBItemTitle.String,
	}
	if t.DueDate.Valid {
		row.DueDate = timeago.English.FormatReference(t.DueDate.Time, now)
	}
	if t.AssignedToName.Valid && t.AssignedToName.String != "" {
		row.AssignedTo = t.AssignedToName.String
	}
	return row
}

// FormatTimeSpent - "07h:05m"; пустая строка для нуля.
func FormatTimeSpent(seconds int64) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%02dh:%02dm", seconds/3600, (seconds%3600)/60)
}

type IDLabelDTO struct {
	ID    uint64 `json:"id"`
	Label string `json:"label"`
}

// TicketListPageDTO - всё, что нужно шаблону списка тикетов.
type TicketListPageDTO struct {
	UrlsafeQuery          string
	QueryParams           helpdeskquery.QueryParams
	SavedQuery            *entities.SavedSearch
	UserSavedQueries      []entities.SavedSearch
	SearchMessage         string
	KBItems               []entities.KBItem
	KBItemChoices         []IDLabelDTO
	UserChoices           []entities.User
	QueueChoices          []entities.Queue
	StatusChoices         []constants.Choice
	DefaultTicketsPerPage int
	Query                 *string
}

func (p TicketListPageDTO) TemplateContext() map[string]interface{} {
	ctx := map[string]interface{}{
		"default_tickets_per_page": p.DefaultTicketsPerPage,
		"user_choices":             p.UserChoices,
		"kb_items":                 p.KBItems,
		"queue_choices":            p.QueueChoices,
		"status_choices":           p.StatusChoices,
		"kbitem_choices":           p.KBItemChoices,
		"urlsafe_query":            p.UrlsafeQuery,
		"user_saved_queries":       p.UserSavedQueries,
		"query_params":             p.QueryParams,
		"from_saved_query":         p.SavedQuery != nil,
		"saved_query":              p.SavedQuery,
		"search_message":           p.SearchMessage,
	}
	if p.Query != nil {
		ctx["query"] = *p.Query
	}
	return ctx
}

// TicketExportRowDTO - строка выгрузки в xlsx.
type TicketExportRowDTO struct {
	ID            uint64
	Title         string
	Queue         string
	Status        string
	Priority      string
	Created       time.Time
	AssignedTo    string
	Submitter     string
	EstimatedTime string
}

func (r TicketExportRowDTO) Cells() []interface{} {
	return []interface{}{
		strconv.FormatUint(r.ID, 10),
		r.Title,
		r.Queue,
		r.Status,
		r.Priority,
		r.Created.Local().Format("2006-01-02 15:04:05"),
		r.AssignedTo,
		r.Submitter,
		r.EstimatedTime,
	}
}

var TicketExportHeaders = []interface{}{
	"ID", "Título", "Cola", "Estado", "Prioridad", "Creado", "Asignado a", "Remitente", "Tiempo estimado",
}
