package books

type ListBooksQuery struct {
	Limit    int     `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=100"`
	Offset   int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	AuthorID *int    `query:"author_id" json:"author_id,omitempty" validate:"omitempty,min=1"`
	Search   *string `query:"search" json:"search,omitempty" validate:"omitempty,max=200"`
}

type ListPagesQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=500"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
}
