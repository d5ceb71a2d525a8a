package dto

type CommentCreateDTO struct {
	Text string `json:"texto" binding:"required" validate:"min=1,max=1000"`
}

type CommentUpdateDTO struct {
	Text string `json:"texto" binding:"required" validate:"min=1,max=1000"`
}
