package helpdeskquery

import (
	"net/url"
	"strconv"
	"strings"
)

// RecognizedParams - GET-параметры, при наличии хотя бы одного из которых
// фильтр строится из запроса, а не берётся по умолчанию.
var RecognizedParams = []string{"queue", "assigned_to", "status", "q", "sort", "sortreverse", "kbitem"}

func HasRecognizedParams(values url.Values) bool {
	for _, key := range RecognizedParams {
		if _, ok := values[key]; ok {
			return true
		}
	}
	return false
}

// ParseValues строит параметры запроса из GET-параметров. Нечисловые
// значения фильтров молча отбрасываются.
func ParseValues(values url.Values) QueryParams {
	params := Empty()

	for _, field := range FilterFields {
		raw, ok := values[string(field)]
		if !ok {
			continue
		}
		ids, hasNull := ParseIDs(raw)
		if len(ids) == 0 {
			continue
		}
		// -1 означает "пусто ИЛИ одно из значений": во второй ветке OR вместо
		// списка ставится IS NULL.
		if hasNull {
			params.FilteringOr.SetIsNull(field)
		} else {
			params.FilteringOr.SetIn(field, append([]int(nil), ids...))
		}
		params.Filtering.SetIn(field, ids)
	}

	if dateFrom := values.Get("date_from"); dateFrom != "" {
		params.Filtering.CreatedGte = dateFrom
	}
	if dateTo := values.Get("date_to"); dateTo != "" {
		params.Filtering.CreatedLte = dateTo
	}

	params.SearchString = values.Get("q")

	params.Sorting = DefaultSorting
	if _, ok := values["sort"]; ok {
		params.Sorting = values.Get("sort")
	}

	params.SortReverse = SortReverse(values.Get("sortreverse"))

	return params
}

// ParseIDs возвращает целые значения и признак наличия NullSentinel.
// Значения вне диапазона int4 отбрасываются так же, как нечисловые.
func ParseIDs(raw []string) (ids []int, hasNull bool) {
	for _, v := range raw {
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 32)
		if err != nil {
			continue
		}
		id := int(parsed)
		if id == NullSentinel {
			hasNull = true
		}
		ids = append(ids, id)
	}
	return ids, hasNull
}
