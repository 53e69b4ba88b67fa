package categories

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

type ReorderCategoriesRequest struct {
	OrderedIDs []uint `json:"ordered_ids"`
}
