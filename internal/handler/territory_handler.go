package handler

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/prize_address/internal/models"
	"github.com/GTDGit/prize_address/internal/refdata"
	"github.com/GTDGit/prize_address/internal/service"
	"github.com/GTDGit/prize_address/internal/utils"
)

var codePattern = regexp.MustCompile(`^\d{1,10}$`)

// TerritoryHandler serves the Thai address hierarchy from the published snapshot.
type TerritoryHandler struct {
	holder *refdata.Holder
}

// NewTerritoryHandler creates a new TerritoryHandler
func NewTerritoryHandler(holder *refdata.Holder) *TerritoryHandler {
	return &TerritoryHandler{holder: holder}
}

// TerritoryList wraps a territory listing with its count.
type TerritoryList struct {
	Total int         `json:"total"`
	Items interface{} `json:"items"`
}

// GetProvinces returns all provinces
// GET /v1/territory/province
func (h *TerritoryHandler) GetProvinces(c *gin.Context) {
	snap := h.holder.Snapshot()
	if !h.requireLoaded(c, snap, refdata.DatasetProvinces) {
		return
	}

	response := make([]models.ProvinceResponse, 0, len(snap.Provinces()))
	for _, p := range snap.Provinces() {
		response = append(response, p.ToResponse())
	}

	utils.Success(c, http.StatusOK, "Successfully retrieved provinces", TerritoryList{
		Total: len(response),
		Items: response,
	})
}

// GetDistrictsByProvince returns the districts of a province
// GET /v1/territory/district/:province_code
func (h *TerritoryHandler) GetDistrictsByProvince(c *gin.Context) {
	provinceCode, ok := h.parseCode(c, c.Param("province_code"), "Province code")
	if !ok {
		return
	}

	snap := h.holder.Snapshot()
	if !h.requireLoaded(c, snap, refdata.DatasetDistricts) {
		return
	}

	districts := service.NewSelector(snap).DistrictsFor(provinceCode)
	response := make([]models.DistrictResponse, 0, len(districts))
	for _, d := range districts {
		response = append(response, d.ToResponse())
	}

	utils.Success(c, http.StatusOK, "Successfully retrieved districts", TerritoryList{
		Total: len(response),
		Items: response,
	})
}

// GetSubDistrictsByDistrict returns the subdistricts of a district. With
// province_code the province must match as well.
// GET /v1/territory/sub-district/:district_code
func (h *TerritoryHandler) GetSubDistrictsByDistrict(c *gin.Context) {
	districtCode, ok := h.parseCode(c, c.Param("district_code"), "District code")
	if !ok {
		return
	}
	provinceCode := 0
	if raw := c.Query("province_code"); raw != "" {
		if provinceCode, ok = h.parseCode(c, raw, "Province code"); !ok {
			return
		}
	}

	snap := h.holder.Snapshot()
	if !h.requireLoaded(c, snap, refdata.DatasetSubdistricts) {
		return
	}

	sel := service.NewSelector(snap)
	var subdistricts []models.Subdistrict
	if provinceCode != 0 {
		subdistricts = sel.SubdistrictsWithin(provinceCode, districtCode)
	} else {
		subdistricts = sel.SubdistrictsFor(districtCode)
	}

	response := make([]models.SubdistrictResponse, 0, len(subdistricts))
	for _, sd := range subdistricts {
		response = append(response, sd.ToResponse())
	}

	utils.Success(c, http.StatusOK, "Successfully retrieved sub-districts", TerritoryList{
		Total: len(response),
		Items: response,
	})
}

// GetPostalCode resolves the postal code of one subdistrict
// GET /v1/territory/postal-code?province_code=&district_code=&sub_district_code=
func (h *TerritoryHandler) GetPostalCode(c *gin.Context) {
	provinceCode, ok := h.parseCode(c, c.Query("province_code"), "Province code")
	if !ok {
		return
	}
	districtCode, ok := h.parseCode(c, c.Query("district_code"), "District code")
	if !ok {
		return
	}
	subCode := c.Query("sub_district_code")
	if !codePattern.MatchString(subCode) {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Sub-district code must be numeric")
		return
	}

	snap := h.holder.Snapshot()
	if !h.requireLoaded(c, snap, refdata.DatasetSubdistricts) {
		return
	}

	sd, found := service.NewSelector(snap).FindSubdistrict(subCode, provinceCode, districtCode)
	if !found {
		utils.Error(c, http.StatusNotFound, "NOT_FOUND", "Sub-district '"+subCode+"' does not exist in the given district and province")
		return
	}

	utils.Success(c, http.StatusOK, "Successfully resolved postal code", models.PostalCodeResponse{
		PostalCode:      sd.PostalCode,
		SubdistrictCode: sd.SubdistrictCode.Int(),
		DistrictCode:    sd.DistrictCode.Int(),
		ProvinceCode:    sd.ProvinceCode.Int(),
	})
}

// Helper functions

func (h *TerritoryHandler) parseCode(c *gin.Context, raw, label string) (int, bool) {
	if !codePattern.MatchString(raw) {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", label+" must be numeric")
		return 0, false
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", label+" must be numeric")
		return 0, false
	}
	return code, true
}

// requireLoaded answers 503 while a dataset is pending or failed, so that
// "not loaded" is never confused with "loaded but empty".
func (h *TerritoryHandler) requireLoaded(c *gin.Context, snap *refdata.Snapshot, ds refdata.Dataset) bool {
	if snap.Loaded(ds) {
		return true
	}
	utils.Error(c, http.StatusServiceUnavailable, "NOT_LOADED", string(ds)+" dataset is "+string(snap.Status(ds).State))
	return false
}
