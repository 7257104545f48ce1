package models

// Pagination описывает страницу выборки
type Pagination struct {
	Current int  `json:"current"`
	Pages   int  `json:"pages"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// NewPagination считает параметры страницы: returned показывает, сколько
// записей реально вернулось, total сколько их всего по фильтру
func NewPagination(page, limit, returned, total int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	skip := (page - 1) * limit
	pages := (total + limit - 1) / limit
	return Pagination{
		Current: page,
		Pages:   pages,
		Total:   total,
		HasNext: skip+returned < total,
		HasPrev: page > 1,
	}
}
