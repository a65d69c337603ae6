package handler

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ameer851/axix-finance-sub003/internal/repository"
	"github.com/ameer851/axix-finance-sub003/internal/service"
)

type SystemSettingsHandler struct {
	Repo     repository.SystemSettingRepository
	Settings *service.SystemSettingsService
}

func (h *SystemSettingsHandler) Register(g *gin.RouterGroup) {
	s := g.Group("/system-settings")
	s.GET("", h.list)
	s.GET("/switches", h.listSwitches)
	s.PUT("/switches/:name", h.putSwitch)
}

// @Summary List system settings
// @Tags system-settings
// @Produce json
// @Param prefix query string false "key prefix"
// @Success 200 {array} models.SystemSetting
// @Router /api/v1/system-settings [get]
func (h *SystemSettingsHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 200)
	offset := intQuery(c, "offset", 0)
	params := repository.ListSystemSettingsParams{
		Limit:   limit,
		Offset:  offset,
		Prefix:  stringQueryPtr(c, "prefix"),
		OrderBy: "key",
		Asc:     boolPtr(true),
	}
	items, err := h.Repo.ListSystemSettings(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountSystemSettings(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

type switchView struct {
	Name    string `json:"name"`
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
}

// @Summary List feature switches
// @Tags system-settings
// @Produce json
// @Success 200 {array} switchView
// @Router /api/v1/system-settings/switches [get]
func (h *SystemSettingsHandler) listSwitches(c *gin.Context) {
	if h.Settings == nil {
		Error(c, http.StatusInternalServerError, "settings service unavailable", nil)
		return
	}
	switches := h.Settings.Switches(c.Request.Context())
	out := make([]switchView, 0, len(switches))
	for key, enabled := range switches {
		out = append(out, switchView{Name: strings.TrimPrefix(key, "feature."), Key: key, Enabled: enabled})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	Ok(c, out, nil)
}

type putSwitchRequest struct {
	Enabled *bool `json:"enabled"`
}

// @Summary Set a feature switch
// @Tags system-settings
// @Accept json
// @Produce json
// @Param name path string true "switch name without the feature. prefix"
// @Param body body putSwitchRequest true "new value"
// @Success 200 {object} switchView
// @Failure 404 {object} apiResponse
// @Router /api/v1/system-settings/switches/{name} [put]
func (h *SystemSettingsHandler) putSwitch(c *gin.Context) {
	if h.Settings == nil {
		Error(c, http.StatusInternalServerError, "settings service unavailable", nil)
		return
	}
	name := strings.TrimSpace(c.Param("name"))
	var req putSwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	key := "feature." + name
	err := h.Settings.SetEnabled(c.Request.Context(), key, *req.Enabled)
	if errors.Is(err, service.ErrUnknownSwitch) {
		Error(c, http.StatusNotFound, err.Error(), nil)
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, switchView{Name: name, Key: key, Enabled: *req.Enabled}, nil)
}
