package books

type ListBooksQuery struct {
	Sort  string `query:"sort" json:"sort,omitempty" mod:"trim,lcase" default:"title" validate:"oneof=title isbn author year"`
	Order string `query:"order" json:"order,omitempty" mod:"trim,lcase" default:"asc" validate:"oneof=asc desc"`
}
