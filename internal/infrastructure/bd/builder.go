package bd

import (
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"soporte/pkg/helpdeskquery"
)

// Колонки helpdesk_ticket для фильтров по id.
var filterColumns = map[helpdeskquery.FilterField]string{
	helpdeskquery.FieldQueue:      "t.queue_id",
	helpdeskquery.FieldAssignedTo: "t.assigned_to_id",
	helpdeskquery.FieldStatus:     "t.status",
	helpdeskquery.FieldKBItem:     "t.kbitem_id",
}

// ЕДИНАЯ КАРТА СОРТИРОВКИ (имя поля хелпдеска -> колонка)
var ticketSortMap = map[string]string{
	"id":              "t.id",
	"title":           "t.title",
	"priority":        "t.priority",
	"queue":           "q.title",
	"status":          "t.status",
	"created":         "t.created",
	"modified":        "t.modified",
	"due_date":        "t.due_date",
	"assigned_to":     "u.username",
	"submitter_email": "t.submitter_email",
	"kbitem":          "kb.title",
	"time_spent":      "ts.seconds",
}

// DatatablesOrderColumns - индекс колонки DataTables -> поле сортировки.
var DatatablesOrderColumns = map[string]string{
	"0":  "id",
	"1":  "title",
	"2":  "priority",
	"3":  "queue",
	"4":  "status",
	"5":  "created",
	"6":  "due_date",
	"7":  "assigned_to",
	"8":  "submitter_email",
	"9":  "kbitem",
	"10": "time_spent",
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"}

// TicketCondition собирает WHERE для параметров запроса:
// (filtering) OR (filtering_or), затем AND поиск.
func TicketCondition(params helpdeskquery.QueryParams) sq.And {
	and := filteringCondition(params.Filtering)
	or := filteringCondition(params.FilteringOr)

	cond := sq.And{}
	switch {
	case len(and) > 0 && len(or) > 0:
		cond = append(cond, sq.Or{and, or})
	case len(and) > 0:
		cond = append(cond, and)
	case len(or) > 0:
		cond = append(cond, or)
	}

	if search := SearchCondition(params.SearchString); search != nil {
		cond = append(cond, search)
	}
	return cond
}

func filteringCondition(f helpdeskquery.Filtering) sq.And {
	cond := sq.And{}
	for _, field := range helpdeskquery.FilterFields {
		col := filterColumns[field]
		if ids := f.In(field); len(ids) > 0 {
			cond = append(cond, sq.Eq{col: ids})
		}
		if f.IsNull(field) {
			cond = append(cond, sq.Eq{col: nil})
		}
	}
	// Непарсящиеся даты молча пропускаем
	if from, ok := parseDateBound(f.CreatedGte); ok {
		cond = append(cond, sq.GtOrEq{"t.created": from})
	}
	if to, ok := parseDateBound(f.CreatedLte); ok {
		cond = append(cond, sq.LtOrEq{"t.created": to})
	}
	return cond
}

func parseDateBound(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SearchCondition - поиск по строке. "queue:" и "priority:" ищут только по
// своему полю, остальное делится на части по "OR".
func SearchCondition(search string) sq.Sqlizer {
	if search == "" {
		return nil
	}
	if rest, ok := strings.CutPrefix(search, "queue:"); ok {
		return sq.ILike{"q.title": containsPattern(rest)}
	}
	if rest, ok := strings.CutPrefix(search, "priority:"); ok {
		return sq.Expr("CAST(t.priority AS text) ILIKE ?", containsPattern(rest))
	}

	or := sq.Or{}
	for _, part := range strings.Split(search, "OR") {
		pat := containsPattern(strings.TrimSpace(part))
		or = append(or,
			sq.Expr("CAST(t.id AS text) ILIKE ?", pat),
			sq.ILike{"t.title": pat},
			sq.ILike{"t.description": pat},
			sq.Expr("CAST(t.priority AS text) ILIKE ?", pat),
			sq.ILike{"t.resolution": pat},
			sq.ILike{"t.submitter_email": pat},
			sq.ILike{"u.email": pat},
			sq.Expr("EXISTS (SELECT 1 FROM helpdesk_ticketcustomfieldvalue cf WHERE cf.ticket_id = t.id AND cf.value ILIKE ?)", pat),
			sq.Expr("CAST(t.created AS text) ILIKE ?", pat),
			sq.Expr("CAST(t.due_date AS text) ILIKE ?", pat),
		)
	}
	return or
}

func containsPattern(s string) string {
	return "%" + escapeLike(s) + "%"
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

// TicketOrderBy: без поля сортировки - по дате создания, новые сверху;
// sortreverse разворачивает направление. Неизвестные поля заменяются на created.
func TicketOrderBy(sorting string, reverse bool) []string {
	field := strings.TrimPrefix(sorting, "-")
	descending := strings.HasPrefix(sorting, "-")

	if sorting == "" {
		field = "created"
		descending = !reverse
	} else if reverse {
		descending = !descending
	}

	col, ok := ticketSortMap[field]
	if !ok {
		col = ticketSortMap["created"]
	}

	dir := "ASC"
	if descending {
		dir = "DESC"
	}
	// id как второй ключ, чтобы страницы были стабильны
	return []string{col + " " + dir, "t.id " + dir}
}

// DatatablesOrderBy переводит колонку и направление DataTables в ORDER BY.
func DatatablesOrderBy(column, dir string) []string {
	field, ok := DatatablesOrderColumns[column]
	if !ok {
		field = "created"
	}
	if strings.EqualFold(dir, "desc") {
		field = "-" + field
	}
	return TicketOrderBy(field, false)
}

// QueueAccess ограничивает колонку с id очереди очередями, доступ к которым
// выдан пользователю напрямую или через группу. nil - ограничений нет.
func QueueAccess(column string, userID uint64, restricted bool) sq.Sqlizer {
	if !restricted {
		return nil
	}
	return sq.Expr(column+` IN (
		SELECT aq.id FROM helpdesk_queue aq
		JOIN auth_permission p ON p.codename = 'queue_access_' || aq.slug
		WHERE EXISTS (SELECT 1 FROM auth_user_user_permissions up WHERE up.permission_id = p.id AND up.user_id = ?)
		   OR EXISTS (SELECT 1 FROM auth_user_groups ug JOIN auth_group_permissions gp ON gp.group_id = ug.group_id
		              WHERE gp.permission_id = p.id AND ug.user_id = ?)
	)`, userID, userID)
}
