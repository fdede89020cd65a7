package service

import (
	"github.com/GTDGit/prize_address/internal/models"
	"github.com/GTDGit/prize_address/internal/refdata"
)

// Selector derives the cascading province → district → subdistrict options
// from a reference snapshot. All methods are pure and safe to call on every
// state read.
type Selector struct {
	snap *refdata.Snapshot
}

// NewSelector creates a Selector over snap.
func NewSelector(snap *refdata.Snapshot) *Selector {
	if snap == nil {
		snap = refdata.NewPendingSnapshot()
	}
	return &Selector{snap: snap}
}

// Snapshot returns the underlying reference snapshot.
func (s *Selector) Snapshot() *refdata.Snapshot {
	return s.snap
}

// DistrictsFor returns the districts of provinceCode in dataset order.
// It is empty when provinceCode is unset.
func (s *Selector) DistrictsFor(provinceCode int) []models.District {
	out := []models.District{}
	if provinceCode == 0 {
		return out
	}
	for _, d := range s.snap.Districts() {
		if d.ProvinceCode.Int() == provinceCode {
			out = append(out, d)
		}
	}
	return out
}

// SubdistrictsFor returns the subdistricts of districtCode in dataset order.
// Only the district code is compared; see SubdistrictsWithin for the
// province-checked variant.
func (s *Selector) SubdistrictsFor(districtCode int) []models.Subdistrict {
	out := []models.Subdistrict{}
	if districtCode == 0 {
		return out
	}
	for _, sd := range s.snap.Subdistricts() {
		if sd.DistrictCode.Int() == districtCode {
			out = append(out, sd)
		}
	}
	return out
}

// SubdistrictsWithin returns the subdistricts matching both districtCode and
// provinceCode. It is empty when either is unset.
func (s *Selector) SubdistrictsWithin(provinceCode, districtCode int) []models.Subdistrict {
	out := []models.Subdistrict{}
	if provinceCode == 0 || districtCode == 0 {
		return out
	}
	for _, sd := range s.snap.Subdistricts() {
		if sd.DistrictCode.Int() == districtCode && sd.ProvinceCode.Int() == provinceCode {
			out = append(out, sd)
		}
	}
	return out
}

// FindSubdistrict looks up the subdistrict matching all three codes.
// subdistrictCode is the raw form value and is coerced like the form does.
func (s *Selector) FindSubdistrict(subdistrictCode string, provinceCode, districtCode int) (models.Subdistrict, bool) {
	code, err := models.ParseCode(subdistrictCode)
	if err != nil || code == 0 {
		return models.Subdistrict{}, false
	}
	for _, sd := range s.snap.Subdistricts() {
		if sd.SubdistrictCode.Int() == code &&
			sd.ProvinceCode.Int() == provinceCode &&
			sd.DistrictCode.Int() == districtCode {
			return sd, true
		}
	}
	return models.Subdistrict{}, false
}

// ResolvePostalCode returns the postal code of the subdistrict matching all
// three codes. The boolean is false when no exact match exists.
func (s *Selector) ResolvePostalCode(subdistrictCode string, provinceCode, districtCode int) (string, bool) {
	sd, ok := s.FindSubdistrict(subdistrictCode, provinceCode, districtCode)
	if !ok {
		return "", false
	}
	return sd.PostalCode, true
}

// ProvinceName returns the Thai name of provinceCode, or "".
func (s *Selector) ProvinceName(provinceCode int) string {
	for _, p := range s.snap.Provinces() {
		if p.ProvinceCode.Int() == provinceCode {
			return p.ProvinceNameTh
		}
	}
	return ""
}

// DistrictName returns the Thai name of districtCode, or "".
func (s *Selector) DistrictName(districtCode int) string {
	for _, d := range s.snap.Districts() {
		if d.DistrictCode.Int() == districtCode {
			return d.DistrictNameTh
		}
	}
	return ""
}

// SubdistrictName returns the Thai name of the exactly matching subdistrict, or "".
func (s *Selector) SubdistrictName(subdistrictCode string, provinceCode, districtCode int) string {
	sd, ok := s.FindSubdistrict(subdistrictCode, provinceCode, districtCode)
	if !ok {
		return ""
	}
	return sd.SubdistrictNameTh
}
