package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"business-finder/internal/common/errors"
	"business-finder/internal/common/validation"
	"business-finder/internal/finder"
	"business-finder/internal/models"
	exportcsv "business-finder/internal/workers/business-search/export-csv"

	"github.com/labstack/echo/v4"
)

const maxBodyBytes = 64 << 10

type SearchRequest struct {
	Keyword      string         `json:"keyword"`
	Location     string         `json:"location"`
	LocationType string         `json:"locationType"`
	SessionID    string         `json:"sessionId,omitempty"`
	Filters      *FilterRequest `json:"filters,omitempty"`
}

type FilterRequest struct {
	Name   string `json:"name,omitempty"`
	Rating string `json:"rating,omitempty"`
}

type SearchResponse struct {
	SessionID  string            `json:"sessionId"`
	Keyword    string            `json:"keyword"`
	Location   models.Location   `json:"location"`
	Total      int               `json:"total"`
	Matched    int               `json:"matched"`
	Businesses []models.Business `json:"businesses"`
}

func searchRequestSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"keyword", "location", "locationType"},
		Properties: map[string]validation.Property{
			"keyword": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(200),
			},
			"location": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(200),
			},
			"locationType": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
			},
			"sessionId": {
				Type:      "string",
				MaxLength: validation.IntPtr(128),
			},
			"filters": {
				Type: "object",
				Properties: map[string]validation.Property{
					"name":   {Type: "string"},
					"rating": {Type: "string", Enum: []string{"", "all", "any", "3+", "3.5+", "4+"}},
				},
			},
		},
		AdditionalProperties: false,
	}
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) ready(c echo.Context) error {
	if err := s.finder.Ready(); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) createSearch(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("failed to read body: %v", err))
	}

	result := validation.ValidateJSON(body, searchRequestSchema())
	if !result.Valid {
		return errors.NewInvalidInputError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var req SearchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("invalid body: %v", err))
	}

	locationType, err := models.ParseLocationType(req.LocationType)
	if err != nil {
		return errors.NewInvalidInputError(err.Error())
	}

	var filters models.Filters
	if req.Filters != nil {
		filters, err = parseFilters(req.Filters.Name, req.Filters.Rating)
		if err != nil {
			return err
		}
	}

	rs, err := s.finder.Search(c.Request().Context(), finder.Request{
		SessionID:    req.SessionID,
		Keyword:      req.Keyword,
		Location:     req.Location,
		LocationType: locationType,
	})
	if err != nil {
		return err
	}

	_, filtered, err := s.finder.Results(c.Request().Context(), rs.SessionID, filters)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSearchResponse(rs, filtered))
}

func (s *Server) getSearch(c echo.Context) error {
	filters, err := parseFilters(c.QueryParam("name"), c.QueryParam("rating"))
	if err != nil {
		return err
	}

	rs, filtered, err := s.finder.Results(c.Request().Context(), c.Param("sessionId"), filters)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSearchResponse(rs, filtered))
}

func (s *Server) exportSearch(c echo.Context) error {
	filters, err := parseFilters(c.QueryParam("name"), c.QueryParam("rating"))
	if err != nil {
		return err
	}

	var locale exportcsv.Locale
	if raw := c.QueryParam("locale"); raw != "" {
		locale, err = exportcsv.ParseLocale(raw)
		if err != nil {
			return errors.NewInvalidInputError(err.Error())
		}
	}

	out, err := s.finder.Export(c.Request().Context(), c.Param("sessionId"), filters, locale)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", out.FileName))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", []byte(out.CSV))
}

func parseFilters(name, rating string) (models.Filters, error) {
	threshold, err := models.ParseRatingThreshold(rating)
	if err != nil {
		return models.Filters{}, errors.NewInvalidInputError(err.Error())
	}
	return models.Filters{Name: name, Rating: threshold}, nil
}

func newSearchResponse(rs *models.ResultSet, filtered []models.Business) SearchResponse {
	if filtered == nil {
		filtered = []models.Business{}
	}
	return SearchResponse{
		SessionID:  rs.SessionID,
		Keyword:    rs.Keyword,
		Location:   rs.Location,
		Total:      len(rs.Businesses),
		Matched:    len(filtered),
		Businesses: filtered,
	}
}
