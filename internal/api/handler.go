package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/law-makers/goodscrawl/internal/extract"
	"github.com/law-makers/goodscrawl/pkg/models"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HealthResponse is the body of GET /api/v1/health
type HealthResponse struct {
	Status string                 `json:"status"`
	Uptime string                 `json:"uptime"`
	Sites  []string               `json:"sites"`
	Stats  map[string]interface{} `json:"stats,omitempty"`
}

// legacyRecord is the record plus the requested URL, as the musinsa endpoint
// has always answered
type legacyRecord struct {
	*models.ProductRecord
	SourceURL string `json:"sourceUrl"`
}

// Health returns a handler for GET /api/v1/health
func Health(startTime time.Time, sites []string, stats func() map[string]interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{
			Status: "ok",
			Uptime: time.Since(startTime).Round(time.Second).String(),
			Sites:  sites,
		}
		if stats != nil {
			resp.Stats = stats()
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Product returns a handler for GET /api/v1/product?url=
func Product(sc Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		url := strings.TrimSpace(c.Query("url"))
		if url == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "url query parameter is required"})
			return
		}
		rec, err := sc.Scrape(c.Request.Context(), url)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

// LegacyMusinsa returns a handler for GET /api/musinsa?url=, which accepts
// musinsa URLs only
func LegacyMusinsa(sc Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		url := strings.TrimSpace(c.Query("url"))
		if url == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "url query parameter is required"})
			return
		}
		if !strings.Contains(url, "musinsa.com") {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "only musinsa product URLs are supported",
				Code:  string(extract.CodeUnsupportedSite),
			})
			return
		}
		rec, err := sc.Scrape(c.Request.Context(), url)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, legacyRecord{ProductRecord: rec, SourceURL: url})
	}
}

func respondError(c *gin.Context, err error) {
	code := extract.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case extract.CodeUnsupportedSite:
		status = http.StatusUnprocessableEntity
	case extract.CodeTimeout:
		status = http.StatusGatewayTimeout
	case extract.CodeNavigationFailure:
		status = http.StatusBadGateway
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: string(code)})
}
