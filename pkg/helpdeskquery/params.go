// Package helpdeskquery описывает параметры запроса к списку тикетов и их
// сериализацию в URL-безопасный токен.
package helpdeskquery

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Статусы тикетов хелпдеска.
const (
	StatusOpen      = 1
	StatusReopened  = 2
	StatusResolved  = 3
	StatusClosed    = 4
	StatusDuplicate = 5
)

// NullSentinel в параметрах фильтра означает "поле не заполнено".
const NullSentinel = -1

const DefaultSorting = "priority"

// OpenStatuses - статусы, которые показываются по умолчанию.
var OpenStatuses = []int{StatusOpen, StatusReopened}

type FilterField string

const (
	FieldQueue      FilterField = "queue"
	FieldAssignedTo FilterField = "assigned_to"
	FieldStatus     FilterField = "status"
	FieldKBItem     FilterField = "kbitem"
)

// FilterFields в порядке разбора GET-параметров.
var FilterFields = []FilterField{FieldQueue, FieldAssignedTo, FieldStatus, FieldKBItem}

// Filtering - набор условий, объединяемых через AND.
type Filtering struct {
	QueueIDIn          []int  `json:"queue__id__in,omitempty"`
	QueueIDIsNull      bool   `json:"queue__id__isnull,omitempty"`
	AssignedToIDIn     []int  `json:"assigned_to__id__in,omitempty"`
	AssignedToIDIsNull bool   `json:"assigned_to__id__isnull,omitempty"`
	StatusIn           []int  `json:"status__in,omitempty"`
	StatusIsNull       bool   `json:"status__isnull,omitempty"`
	KBItemIn           []int  `json:"kbitem__in,omitempty"`
	KBItemIsNull       bool   `json:"kbitem__isnull,omitempty"`
	CreatedGte         string `json:"created__gte,omitempty"`
	CreatedLte         string `json:"created__lte,omitempty"`
}

func (f *Filtering) SetIn(field FilterField, ids []int) {
	switch field {
	case FieldQueue:
		f.QueueIDIn = ids
	case FieldAssignedTo:
		f.AssignedToIDIn = ids
	case FieldStatus:
		f.StatusIn = ids
	case FieldKBItem:
		f.KBItemIn = ids
	}
}

func (f *Filtering) SetIsNull(field FilterField) {
	switch field {
	case FieldQueue:
		f.QueueIDIsNull = true
	case FieldAssignedTo:
		f.AssignedToIDIsNull = true
	case FieldStatus:
		f.StatusIsNull = true
	case FieldKBItem:
		f.KBItemIsNull = true
	}
}

func (f Filtering) In(field FilterField) []int {
	switch field {
	case FieldQueue:
		return f.QueueIDIn
	case FieldAssignedTo:
		return f.AssignedToIDIn
	case FieldStatus:
		return f.StatusIn
	case FieldKBItem:
		return f.KBItemIn
	}
	return nil
}

func (f Filtering) IsNull(field FilterField) bool {
	switch field {
	case FieldQueue:
		return f.QueueIDIsNull
	case FieldAssignedTo:
		return f.AssignedToIDIsNull
	case FieldStatus:
		return f.StatusIsNull
	case FieldKBItem:
		return f.KBItemIsNull
	}
	return false
}

func (f Filtering) IsEmpty() bool {
	for _, field := range FilterFields {
		if len(f.In(field)) > 0 || f.IsNull(field) {
			return false
		}
	}
	return f.CreatedGte == "" && f.CreatedLte == ""
}

// SortReverse хранит sortreverse в том виде, в котором он пришёл в запросе.
// Любая непустая строка, включая "False", включает обратную сортировку.
type SortReverse string

func (r SortReverse) Enabled() bool { return r != "" }

func (r SortReverse) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("false"), nil
	}
	return json.Marshal(string(r))
}

func (r *SortReverse) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*r = ""
	case bool:
		if v {
			*r = "true"
		} else {
			*r = ""
		}
	case string:
		*r = SortReverse(v)
	case float64:
		if v == 0 {
			*r = ""
		} else {
			*r = SortReverse(strconv.FormatFloat(v, 'f', -1, 64))
		}
	default:
		return fmt.Errorf("sortreverse: неподдерживаемый тип %T", raw)
	}
	return nil
}

// QueryParams - спецификация фильтра списка тикетов.
type QueryParams struct {
	Filtering    Filtering   `json:"filtering"`
	FilteringOr  Filtering   `json:"filtering_or"`
	Sorting      string      `json:"sorting"`
	SortReverse  SortReverse `json:"sortreverse"`
	SearchString string      `json:"search_string"`
}

// Empty - отправная точка для разбора GET-параметров.
func Empty() QueryParams {
	return QueryParams{}
}

// Default - открытые тикеты по приоритету, без поиска.
func Default() QueryParams {
	return QueryParams{
		Filtering: Filtering{
			StatusIn: append([]int(nil), OpenStatuses...),
		},
		Sorting: DefaultSorting,
	}
}
