package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"jamdash/internal/services/collections"
	"jamdash/internal/services/merge"

	"github.com/labstack/echo/v4"
)

const (
	defaultPageSize = 25
	maxPageSize     = 500
)

type addCompaniesRequest struct {
	CompanyIDs   []int  `json:"company_ids"`
	CollectionID string `json:"collection_id"`
}

type likeCompanyRequest struct {
	CompanyID int `json:"company_id"`
}

type mergeResponse struct {
	Message string `json:"message"`
	TaskID  string `json:"task_id"`
}

type conflictResponse struct {
	Error  string `json:"error"`
	TaskID string `json:"task_id,omitempty"` // the running task, so the client can attach
}

type taskInProgressResponse struct {
	TaskID *string `json:"task_id"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type actionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleListCompanies(c echo.Context) error {
	offset, limit := pagination(c)
	companies, err := s.collections.ListCompanies(offset, limit)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"companies": companies})
}

func (s *Server) handleListCollections(c echo.Context) error {
	cols, err := s.collections.ListCollections()
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, cols)
}

func (s *Server) handleGetCollection(c echo.Context) error {
	offset, limit := pagination(c)
	page, err := s.collections.GetCollectionPage(c.Param("id"), offset, limit)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (s *Server) handleAddCompanies(c echo.Context) error {
	var req addCompaniesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	added, name, err := s.collections.AddCompanies(req.CompanyIDs, req.CollectionID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, messageResponse{
		Message: fmt.Sprintf("%d companies added to '%s' collection successfully", added, name),
	})
}

func (s *Server) handleRemoveCompanies(c echo.Context) error {
	var req addCompaniesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	removed, name, err := s.collections.RemoveCompanies(req.CompanyIDs, req.CollectionID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, messageResponse{
		Message: fmt.Sprintf("%d companies removed from '%s' collection successfully", removed, name),
	})
}

func (s *Server) handleLikeCompany(c echo.Context) error {
	var req likeCompanyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ok, msg, err := s.collections.LikeCompany(req.CompanyID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, actionResponse{Success: ok, Message: msg})
}

func (s *Server) handleUnlikeCompany(c echo.Context) error {
	var req likeCompanyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ok, msg, err := s.collections.UnlikeCompany(req.CompanyID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, actionResponse{Success: ok, Message: msg})
}

func (s *Server) handleRequestMerge(c echo.Context) error {
	var req merge.MergeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	task, err := s.merge.RequestMerge(req)
	if errors.Is(err, merge.ErrTaskInProgress) {
		// Tell the client which task is running so it can attach to its
		// progress stream instead of failing silently.
		resp := conflictResponse{Error: err.Error()}
		if active, aerr := s.merge.ActiveTask(); aerr == nil && active != nil {
			resp.TaskID = active.ID
		}
		return c.JSON(http.StatusConflict, resp)
	}
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, mergeResponse{Message: "Bulk addition started.", TaskID: task.ID})
}

func (s *Server) handleTaskInProgress(c echo.Context) error {
	task, err := s.merge.ActiveTask()
	if err != nil {
		return mapServiceError(err)
	}

	resp := taskInProgressResponse{}
	if task != nil {
		resp.TaskID = &task.ID
	}
	return c.JSON(http.StatusOK, resp)
}

// pagination reads offset/limit query parameters with sane bounds
func pagination(c echo.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return offset, limit
}

// mapServiceError converts service errors into HTTP responses
func mapServiceError(err error) error {
	var verr *merge.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
	case errors.Is(err, merge.ErrCollectionNotFound),
		errors.Is(err, collections.ErrCollectionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, collections.ErrCompanyNotFound),
		errors.Is(err, collections.ErrNoAssociations):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, merge.ErrTaskNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
