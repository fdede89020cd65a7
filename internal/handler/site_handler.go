package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/prize_address/internal/refdata"
	"github.com/GTDGit/prize_address/internal/utils"
)

// InvalidSiteMessage is shown when the URL names no registered site.
const InvalidSiteMessage = "เว็บไซต์ไม่ถูกต้อง กรุณาตรวจสอบ URL"

// SiteHandler resolves the site named in the form URL.
type SiteHandler struct {
	holder    *refdata.Holder
	autoClose time.Duration
}

// NewSiteHandler creates a new SiteHandler.
func NewSiteHandler(holder *refdata.Holder, autoClose time.Duration) *SiteHandler {
	return &SiteHandler{holder: holder, autoClose: autoClose}
}

// GetSite resolves a site name case-insensitively.
// GET /v1/sites/:site
func (h *SiteHandler) GetSite(c *gin.Context) {
	name := c.Param("site")
	snap := h.holder.Snapshot()
	if !snap.Loaded(refdata.DatasetSites) {
		utils.Error(c, http.StatusServiceUnavailable, "NOT_LOADED", "sites dataset is "+string(snap.Status(refdata.DatasetSites).State))
		return
	}

	site, ok := snap.ResolveSite(name)
	if !ok {
		utils.ErrorWithNotice(c, http.StatusNotFound, utils.ErrInvalidSite.Error(), "Site '"+name+"' is not registered", nil,
			utils.Toast(utils.LevelError, InvalidSiteMessage, h.autoClose))
		return
	}

	utils.Success(c, http.StatusOK, "Site resolved", site.ToResponse())
}
