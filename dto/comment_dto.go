package dto

import (
	"github.com/princinho/weatherbackend/common"
	"github.com/princinho/weatherbackend/models"
)

type CreateCommentDTO struct {
	Username string
	Comment  string
	Rating   int
}

func ParseCreateComment(f Fields) (CreateCommentDTO, error) {
	if !f.Has("username") || !f.Has("comment") {
		return CreateCommentDTO{}, common.BadRequest("Missing required field: username and comment")
	}
	rating, err := f.Int("rating")
	if err != nil {
		return CreateCommentDTO{}, err
	}
	dto := CreateCommentDTO{Username: f.Get("username"), Comment: f.Get("comment")}
	if rating != nil {
		dto.Rating = *rating
	}
	return dto, nil
}

// ParseCommentPatch reads the mutable comment fields. Blank values are
// ignored.
func ParseCommentPatch(f Fields) (models.CommentPatch, error) {
	rating, err := f.Int("rating")
	if err != nil {
		return models.CommentPatch{}, err
	}
	patch := models.CommentPatch{Comment: f.String("comment"), Rating: rating}
	if patch.Empty() {
		return patch, common.BadRequest("No valid data provided")
	}
	return patch, nil
}
