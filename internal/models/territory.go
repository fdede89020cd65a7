package models

// Province represents a province (changwat) in Thailand
type Province struct {
	ID             int     `json:"id" db:"id"`
	ProvinceCode   FlexInt `json:"provinceCode" db:"province_code"`
	ProvinceNameEn string  `json:"provinceNameEn" db:"name_en"`
	ProvinceNameTh string  `json:"provinceNameTh" db:"name_th"`
}

// District represents a district (amphoe/khet) in Thailand
type District struct {
	ID             int     `json:"id" db:"id"`
	ProvinceCode   FlexInt `json:"provinceCode" db:"province_code"`
	DistrictCode   FlexInt `json:"districtCode" db:"district_code"`
	DistrictNameEn string  `json:"districtNameEn" db:"name_en"`
	DistrictNameTh string  `json:"districtNameTh" db:"name_th"`
	PostalCode     string  `json:"postalCode" db:"postal_code"`
}

// Subdistrict represents a subdistrict (tambon/khwaeng) in Thailand.
// Each subdistrict maps to exactly one postal code.
type Subdistrict struct {
	ID                int     `json:"id" db:"id"`
	ProvinceCode      FlexInt `json:"provinceCode" db:"province_code"`
	DistrictCode      FlexInt `json:"districtCode" db:"district_code"`
	SubdistrictCode   FlexInt `json:"subdistrictCode" db:"subdistrict_code"`
	SubdistrictNameEn string  `json:"subdistrictNameEn" db:"name_en"`
	SubdistrictNameTh string  `json:"subdistrictNameTh" db:"name_th"`
	PostalCode        string  `json:"postalCode" db:"postal_code"`
}

// ProvinceResponse represents the API response for a province
type ProvinceResponse struct {
	Code   int    `json:"code"`
	NameTh string `json:"nameTh"`
	NameEn string `json:"nameEn"`
}

// DistrictResponse represents the API response for a district
type DistrictResponse struct {
	Code         int    `json:"code"`
	ProvinceCode int    `json:"provinceCode"`
	NameTh       string `json:"nameTh"`
	NameEn       string `json:"nameEn"`
}

// SubdistrictResponse represents the API response for a subdistrict
type SubdistrictResponse struct {
	Code         int    `json:"code"`
	DistrictCode int    `json:"districtCode"`
	ProvinceCode int    `json:"provinceCode"`
	NameTh       string `json:"nameTh"`
	NameEn       string `json:"nameEn"`
	PostalCode   string `json:"postalCode"`
}

// PostalCodeResponse represents the API response for a resolved postal code
type PostalCodeResponse struct {
	PostalCode      string `json:"postalCode"`
	SubdistrictCode int    `json:"subdistrictCode"`
	DistrictCode    int    `json:"districtCode"`
	ProvinceCode    int    `json:"provinceCode"`
}

// ToResponse converts a Province to its API shape.
func (p Province) ToResponse() ProvinceResponse {
	return ProvinceResponse{Code: p.ProvinceCode.Int(), NameTh: p.ProvinceNameTh, NameEn: p.ProvinceNameEn}
}

// ToResponse converts a District to its API shape.
func (d District) ToResponse() DistrictResponse {
	return DistrictResponse{
		Code:         d.DistrictCode.Int(),
		ProvinceCode: d.ProvinceCode.Int(),
		NameTh:       d.DistrictNameTh,
		NameEn:       d.DistrictNameEn,
	}
}

// ToResponse converts a Subdistrict to its API shape.
func (s Subdistrict) ToResponse() SubdistrictResponse {
	return SubdistrictResponse{
		Code:         s.SubdistrictCode.Int(),
		DistrictCode: s.DistrictCode.Int(),
		ProvinceCode: s.ProvinceCode.Int(),
		NameTh:       s.SubdistrictNameTh,
		NameEn:       s.SubdistrictNameEn,
		PostalCode:   s.PostalCode,
	}
}
