package appointment

import (
	"strings"
	"time"

	"github.com/Devixx/carepoint-back/internal/domain/availability"
	"github.com/Devixx/carepoint-back/internal/platform/apperr"
	"github.com/Devixx/carepoint-back/pkg/pagination"
)

const (
	DoctorPageSize  = 10
	PatientPageSize = 20
)

// sortColumns maps the accepted sort keys onto columns. Anything else sorts
// by start time.
var sortColumns = map[string]string{
	"startTime": "start_time",
	"endTime":   "end_time",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"status":    "status",
}

type ListParams struct {
	pagination.Params
	Sort   string
	Order  string
	Start  *time.Time
	End    *time.Time
	Status Status
}

// ListQuery is the raw filter part of a list request.
type ListQuery struct {
	Sort   string
	Order  string
	Start  string
	End    string
	Status string
}

// ParseListParams resolves q against page. Dates without a time of day are
// read in loc; a date-only end covers that whole day.
func ParseListParams(page pagination.Params, q ListQuery, loc *time.Location) (ListParams, error) {
	p := ListParams{Params: page, Sort: "start_time", Order: "ASC"}

	if col, ok := sortColumns[q.Sort]; ok {
		p.Sort = col
	}
	if strings.EqualFold(q.Order, "DESC") {
		p.Order = "DESC"
	}

	if q.Start != "" {
		t, err := parseBound(q.Start, loc, false)
		if err != nil {
			return ListParams{}, err
		}
		p.Start = &t
	}
	if q.End != "" {
		t, err := parseBound(q.End, loc, true)
		if err != nil {
			return ListParams{}, err
		}
		p.End = &t
	}
	if p.Start != nil && p.End != nil && p.End.Before(*p.Start) {
		return ListParams{}, apperr.Validation("end must not be before start")
	}

	if q.Status != "" {
		s := Status(q.Status)
		if !s.Valid() {
			return ListParams{}, apperr.Validation("invalid appointment status: %s", q.Status)
		}
		p.Status = s
	}
	return p, nil
}

func parseBound(v string, loc *time.Location, end bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	day, err := availability.ParseDate(v, loc)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid time %q, expected RFC 3339 or YYYY-MM-DD", v)
	}
	start, last := availability.DayRange(day, loc)
	if end {
		return last, nil
	}
	return start, nil
}
