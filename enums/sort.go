package enums

type SortOrder string

const (
	SortInvalid   SortOrder = ""
	SortRelevance SortOrder = "relevance"
	SortNew       SortOrder = "new"
)

func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortRelevance, SortNew:
		return SortOrder(s)
	}
	return SortInvalid
}

type TimeWindow string

const (
	TimeWindowInvalid TimeWindow = ""
	TimeWindowHour    TimeWindow = "hour"
	TimeWindowDay     TimeWindow = "day"
	TimeWindowWeek    TimeWindow = "week"
	TimeWindowMonth   TimeWindow = "month"
	TimeWindowYear    TimeWindow = "year"
	TimeWindowAll     TimeWindow = "all"
)

func ParseTimeWindow(s string) TimeWindow {
	switch TimeWindow(s) {
	case TimeWindowHour, TimeWindowDay, TimeWindowWeek, TimeWindowMonth, TimeWindowYear, TimeWindowAll:
		return TimeWindow(s)
	}
	return TimeWindowInvalid
}
