package helpdeskquery

import (
	"strconv"
	"strings"
)

// TicketLookup - прямой поиск тикета из строки поиска в шапке.
type TicketLookup struct {
	QueueSlug string
	TicketID  uint64
}

// ParseHeaderSearch разбирает "<queue-slug>-<id>" или просто "<id>".
// Второй результат false, если строка не похожа на номер тикета.
func ParseHeaderSearch(query string) (TicketLookup, bool) {
	if strings.Index(query, "-") > 0 {
		sep := strings.LastIndex(query, "-")
		id, ok := ParseID(query[sep+1:])
		if !ok {
			return TicketLookup{}, false
		}
		return TicketLookup{QueueSlug: query[:sep], TicketID: id}, true
	}

	id, ok := ParseID(strings.TrimSpace(query))
	if !ok {
		return TicketLookup{}, false
	}
	return TicketLookup{TicketID: id}, true
}

// ParseID - положительный id записи. Колонки id в хелпдеске INTEGER,
// поэтому всё, что не влезает в int4, не является id.
func ParseID(raw string) (uint64, bool) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint64(id), true
}
