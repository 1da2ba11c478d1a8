package query

// Direction is a sort direction. The empty Direction means the caller did not
// choose one; no direction parameter is sent and the server sorts ascending.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort orders a list by one or more fields sharing a direction.
type Sort struct {
	Fields    []string
	Direction Direction
}

// SortBy sorts by the given fields with no explicit direction.
//
// Example:
//
//	query.SortBy("CODE")                 // sort=CODE
//	query.SortBy("CODE").Desc()          // sort=CODE&direction=desc
//	query.SortBy("DATE_", "CODE").Asc()  // sort=DATE_,CODE&direction=asc
func SortBy(fields ...string) *Sort {
	return &Sort{Fields: fields}
}

// Asc returns a copy of s with an explicit ascending direction.
func (s *Sort) Asc() *Sort {
	return s.with(Asc)
}

// Desc returns a copy of s with an explicit descending direction.
func (s *Sort) Desc() *Sort {
	return s.with(Desc)
}

func (s *Sort) with(d Direction) *Sort {
	if s == nil {
		return &Sort{Direction: d}
	}
	fields := make([]string, len(s.Fields))
	copy(fields, s.Fields)
	return &Sort{Fields: fields, Direction: d}
}
