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

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// WeatherController serves station documents and their statistics.
type WeatherController struct {
	stations  *services.StationService
	publicURL string
}

func NewWeatherController(stations *services.StationService, publicURL string) *WeatherController {
	return &WeatherController{stations: stations, publicURL: strings.TrimRight(publicURL, "/")}
}

func (h *WeatherController) stationURL(id string) string {
	return fmt.Sprintf("%s/weather/%s", h.publicURL, id)
}

// GET /weather?page=&size=
func (h *WeatherController) GetStations() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, size := utils.Pagination(c, defaultPageSize, maxPageSize)

		items, err := h.stations.ListStations(c.Request.Context(), page, size)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"count": len(items),
			"page":  page,
			"data":  items,
		})
	}
}

func (h *WeatherController) GetStation() gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := h.stations.GetStation(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

func (h *WeatherController) AddStation() gin.HandlerFunc {
	return func(c *gin.Context) {
		fields, err := dto.ReadFields(c)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		st, err := dto.ParseCreateStation(fields)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		id, err := h.stations.CreateStation(c.Request.Context(), st)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"id": id.Hex(), "url": h.stationURL(id.Hex())})
	}
}

func (h *WeatherController) UpdateStation() gin.HandlerFunc {
	return func(c *gin.Context) {
		fields, err := dto.ReadFields(c)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		patch, err := dto.ParseStationPatch(fields)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		id := c.Param("id")
		if err := h.stations.UpdateStation(c.Request.Context(), id, patch); err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Weather record updated", "url": h.stationURL(id)})
	}
}

func (h *WeatherController) DeleteStation() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.stations.DeleteStation(c.Request.Context(), c.Param("id")); err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Weather record deleted"})
	}
}

// GET /weather/stats?region=&state=&place=
func (h *WeatherController) GetStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := h.stations.Stats(c.Request.Context(), dto.StationFilterFromQuery(c.Query))
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// GET /weather/alerts?region=&state=&city=&place=
func (h *WeatherController) GetAlerts() gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := h.stations.Alerts(c.Request.Context(), dto.StationFilterFromQuery(c.Query))
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func (h *WeatherController) GetTrends() gin.HandlerFunc {
	return func(c *gin.Context) {
		trends, err := h.stations.Trends(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, trends)
	}
}

func (h *WeatherController) GetGlobalTrends() gin.HandlerFunc {
	return func(c *gin.Context) {
		trends, err := h.stations.GlobalTrends(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, trends)
	}
}
