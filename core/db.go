package core

import "strings"

// Ordering is one sort key; Field names the JSON field of the sorted record.
type Ordering struct {
	Field     string
	Ascending bool
}

func (ord Ordering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// ParseOrdering reads a comma separated list of fields, "-" prefixed fields sort descending.
// e.g. "class,-rollNumber"
func ParseOrdering(val string) []Ordering {
	var ords []Ordering
	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ords = append(ords, Ordering{Field: field, Ascending: !descending})
	}
	return ords
}
