package patient

import (
	"strings"

	"github.com/Devixx/carepoint-back/pkg/pagination"
)

const PageSize = 10

// sortColumns maps the accepted sort keys onto columns. Anything else sorts
// by creation time.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"firstName": "first_name",
	"lastName":  "last_name",
	"email":     "email",
}

type ListParams struct {
	pagination.Params
	Search string
	Sort   string
	Order  string
}

// NewListParams resolves the raw sort and order against the allowlist.
// Newest patients come first unless asked otherwise.
func NewListParams(page pagination.Params, search, sort, order string) ListParams {
	p := ListParams{Params: page, Search: strings.TrimSpace(search), Sort: "created_at", Order: "DESC"}
	if col, ok := sortColumns[sort]; ok {
		p.Sort = col
	}
	if strings.EqualFold(order, "ASC") {
		p.Order = "ASC"
	}
	return p
}
