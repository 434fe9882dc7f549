package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princinho/weatherbackend/dto"
	"github.com/princinho/weatherbackend/services"
	"github.com/princinho/weatherbackend/utils"
)

type ReadingsController struct {
	stations  *services.StationService
	publicURL string
}

func NewReadingsController(stations *services.StationService, publicURL string) *ReadingsController {
	return &ReadingsController{stations: stations, publicURL: strings.TrimRight(publicURL, "/")}
}

// POST /weather/:id/readings
func (h *ReadingsController) AddReading() gin.HandlerFunc {
	return func(c *gin.Context) {
		fields, err := dto.ReadFields(c)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		body, err := dto.ParseCreateReading(fields, time.Now())
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		id := c.Param("id")
		reading, err := h.stations.AddReading(c.Request.Context(), id, body)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Reading added successfully",
			"url":     fmt.Sprintf("%s/weather/%s/readings/%s", h.publicURL, id, reading.ID),
			"reading": reading,
		})
	}
}

// GET /weather/:id/readings?from=&to=
func (h *ReadingsController) GetReadings() gin.HandlerFunc {
	return func(c *gin.Context) {
		rng := services.ReadingRange{
			From: strings.TrimSpace(c.Query("from")),
			To:   strings.TrimSpace(c.Query("to")),
		}
		list, err := h.stations.ListReadings(c.Request.Context(), c.Param("id"), rng)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		body := gin.H{
			"station":  list.Station,
			"count":    len(list.Readings),
			"readings": list.Readings,
		}
		if len(list.Readings) == 0 {
			body["message"] = "No readings available for this station"
		}
		c.JSON(http.StatusOK, body)
	}
}

// PUT /weather/:id/readings/:rid
func (h *ReadingsController) UpdateReading() gin.HandlerFunc {
	return func(c *gin.Context) {
		fields, err := dto.ReadFields(c)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		patch, err := dto.ParseReadingPatch(fields)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		if err := h.stations.UpdateReading(c.Request.Context(), c.Param("id"), c.Param("rid"), patch); err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Reading updated successfully"})
	}
}

// DELETE /weather/:id/readings/:rid
func (h *ReadingsController) DeleteReading() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.stations.DeleteReading(c.Request.Context(), c.Param("id"), c.Param("rid")); err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Reading deleted successfully"})
	}
}
