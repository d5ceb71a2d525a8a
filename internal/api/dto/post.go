package dto

type CreatePostDTO struct {
	Description string   `json:"descripcion" binding:"required" validate:"min=1,max=2000"`
	Images      []string `json:"imagenes" validate:"max=9"`
	Anonymous   bool     `json:"anonimo"`
}

type UpdatePostDTO struct {
	Description string `json:"descripcion" binding:"required" validate:"min=1,max=2000"`
}
