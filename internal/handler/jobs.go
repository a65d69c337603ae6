package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ameer851/axix-finance-sub003/internal/accrual"
	"github.com/ameer851/axix-finance-sub003/internal/repository"
	"github.com/ameer851/axix-finance-sub003/internal/service"
)

type JobsHandler struct {
	Jobs *service.JobService
}

func (h *JobsHandler) Register(g *gin.RouterGroup) {
	jobs := g.Group("/jobs")
	jobs.POST("/daily-investment/run", h.runDailyInvestment)
	jobs.GET("/runs", h.listRuns)
	jobs.GET("/runs/:id", h.getRun)
}

type runResultResponse struct {
	Processed    int    `json:"processed"`
	Completed    int    `json:"completed"`
	TotalApplied string `json:"total_applied"`
}

// @Summary Run the daily investment accrual
// @Tags jobs
// @Accept json
// @Produce json
// @Param body body service.ManualRunRequest false "run options"
// @Success 200 {object} runResultResponse
// @Failure 409 {object} apiResponse
// @Router /api/v1/jobs/daily-investment/run [post]
func (h *JobsHandler) runDailyInvestment(c *gin.Context) {
	if h.Jobs == nil {
		Error(c, http.StatusInternalServerError, "job service unavailable", nil)
		return
	}
	var req service.ManualRunRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			Error(c, http.StatusBadRequest, "invalid body", nil)
			return
		}
	}
	res, err := h.Jobs.RunManual(c.Request.Context(), req)
	if errors.Is(err, accrual.ErrRunInProgress) {
		Error(c, http.StatusConflict, err.Error(), nil)
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, runResultResponse{
		Processed:    res.Processed,
		Completed:    res.Completed,
		TotalApplied: res.TotalApplied.String(),
	}, map[string]any{"dry_run": req.DryRun})
}

// @Summary List job runs
// @Tags jobs
// @Produce json
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Param job_name query string false "job name"
// @Param source query string false "cron, api or manual-test"
// @Success 200 {array} models.JobRun
// @Router /api/v1/jobs/runs [get]
func (h *JobsHandler) listRuns(c *gin.Context) {
	if h.Jobs == nil {
		Error(c, http.StatusInternalServerError, "job service unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	items, total, err := h.Jobs.ListRuns(c.Request.Context(), repository.ListJobRunsParams{
		Limit:   limit,
		Offset:  offset,
		JobName: stringQueryPtr(c, "job_name"),
		Source:  stringQueryPtr(c, "source"),
		OrderBy: "started_at",
		Asc:     boolPtr(false),
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Get a job run
// @Tags jobs
// @Produce json
// @Param id path int true "job run id"
// @Success 200 {object} models.JobRun
// @Failure 404 {object} apiResponse
// @Router /api/v1/jobs/runs/{id} [get]
func (h *JobsHandler) getRun(c *gin.Context) {
	if h.Jobs == nil {
		Error(c, http.StatusInternalServerError, "job service unavailable", nil)
		return
	}
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	item, err := h.Jobs.GetRun(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "job run not found", nil)
		return
	}
	Ok(c, item, nil)
}
