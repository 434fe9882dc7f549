package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/princinho/weatherbackend/dto"
	"github.com/princinho/weatherbackend/services"
	"github.com/princinho/weatherbackend/utils"
)

type CommentsController struct {
	stations  *services.StationService
	publicURL string
}

func NewCommentsController(stations *services.StationService, publicURL string) *CommentsController {
	return &CommentsController{stations: stations, publicURL: strings.TrimRight(publicURL, "/")}
}

// POST /weather/:id/comments
func (h *CommentsController) AddComment() gin.HandlerFunc {
	return func(c *gin.Context) {
		fields, err := dto.ReadFields(c)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		body, err := dto.ParseCreateComment(fields)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		id := c.Param("id")
		comment, err := h.stations.AddComment(c.Request.Context(), id, body)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Comment added successfully",
			"url":     fmt.Sprintf("%s/weather/%s/comments/%s", h.publicURL, id, comment.ID),
			"comment": comment,
		})
	}
}

// GET /weather/:id/comments
func (h *CommentsController) GetComments() gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := h.stations.ListComments(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		body := gin.H{
			"station":  list.Station,
			"count":    len(list.Comments),
			"comments": list.Comments,
		}
		if len(list.Comments) == 0 {
			body["message"] = "No comments available for this station"
		}
		c.JSON(http.StatusOK, body)
	}
}

// PUT /weather/:id/comments/:cid
func (h *CommentsController) UpdateComment() gin.HandlerFunc {
	return func(c *gin.Context) {
		fields, err := dto.ReadFields(c)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		patch, err := dto.ParseCommentPatch(fields)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		if err := h.stations.UpdateComment(c.Request.Context(), c.Param("id"), c.Param("cid"), patch); err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Comment updated successfully"})
	}
}

// DELETE /weather/:id/comments/:cid
func (h *CommentsController) DeleteComment() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.stations.DeleteComment(c.Request.Context(), c.Param("id"), c.Param("cid")); err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
	}
}
