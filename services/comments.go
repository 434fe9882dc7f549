package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/princinho/weatherbackend/common"
	"github.com/princinho/weatherbackend/dto"
	"github.com/princinho/weatherbackend/models"
)

type CommentList struct {
	Station  string
	Comments []models.Comment
}

// AddComment appends a comment with a locally generated id.
func (s *StationService) AddComment(ctx context.Context, stationID string, in dto.CreateCommentDTO) (*models.Comment, error) {
	id, err := parseStationID(stationID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	c := models.Comment{
		ID:        uuid.NewString(),
		Username:  in.Username,
		Comment:   in.Comment,
		Rating:    in.Rating,
		CreatedAt: now,
	}

	n, err := s.stations.PushComment(ctx, id, c, now)
	if err != nil {
		return nil, s.storageError(ctx, "add comment", err)
	}
	if n == 0 {
		return nil, common.NotFound("Weather record not found")
	}
	s.logger.InfoContext(ctx, "comment added", "station_id", stationID, "comment_id", c.ID)
	return &c, nil
}

func (s *StationService) ListComments(ctx context.Context, stationID string) (*CommentList, error) {
	id, err := parseStationID(stationID)
	if err != nil {
		return nil, err
	}
	st, err := s.findStation(ctx, id)
	if err != nil {
		return nil, err
	}
	comments := st.Comments
	if comments == nil {
		comments = []models.Comment{}
	}
	return &CommentList{Station: st.StationName, Comments: comments}, nil
}

func (s *StationService) UpdateComment(ctx context.Context, stationID, commentID string, patch models.CommentPatch) error {
	id, err := parseStationID(stationID)
	if err != nil {
		return err
	}
	if patch.Empty() {
		return common.BadRequest("No valid data provided")
	}

	n, err := s.stations.SetComment(ctx, id, commentID, patch, s.now())
	if err != nil {
		return s.storageError(ctx, "update comment", err)
	}
	if n == 0 {
		s.explainMiss(ctx, id, models.CommentsField, commentID)
		return common.NotFound("Comment not found")
	}
	return nil
}

func (s *StationService) DeleteComment(ctx context.Context, stationID, commentID string) error {
	id, err := parseStationID(stationID)
	if err != nil {
		return err
	}
	n, err := s.stations.PullComment(ctx, id, commentID, s.now())
	if err != nil {
		return s.storageError(ctx, "delete comment", err)
	}
	if n == 0 {
		s.explainMiss(ctx, id, models.CommentsField, commentID)
		return common.NotFound("Comment not found")
	}
	return nil
}
