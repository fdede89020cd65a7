package service

import (
	"github.com/GTDGit/prize_address/internal/models"
	"github.com/GTDGit/prize_address/internal/refdata"
)

func testProvinces() []models.Province {
	return []models.Province{
		{ID: 1, ProvinceCode: 10, ProvinceNameEn: "Bangkok", ProvinceNameTh: "กรุงเทพมหานคร"},
		{ID: 2, ProvinceCode: 20, ProvinceNameEn: "Chon Buri", ProvinceNameTh: "ชลบุรี"},
	}
}

func testDistricts() []models.District {
	return []models.District{
		{ID: 1, ProvinceCode: 10, DistrictCode: 101, DistrictNameEn: "Phra Nakhon", DistrictNameTh: "พระนคร", PostalCode: "10200"},
		{ID: 2, ProvinceCode: 10, DistrictCode: 102, DistrictNameEn: "Dusit", DistrictNameTh: "ดุสิต", PostalCode: "10300"},
		{ID: 3, ProvinceCode: 20, DistrictCode: 201, DistrictNameEn: "Mueang Chon Buri", DistrictNameTh: "เมืองชลบุรี", PostalCode: "20000"},
		// No subdistricts reference 202.
		{ID: 4, ProvinceCode: 20, DistrictCode: 202, DistrictNameEn: "Ko Si Chang", DistrictNameTh: "เกาะสีชัง", PostalCode: "20120"},
	}
}

func testSubdistricts() []models.Subdistrict {
	return []models.Subdistrict{
		{ID: 1, ProvinceCode: 10, DistrictCode: 101, SubdistrictCode: 10101, SubdistrictNameEn: "Phra Borom Maha Ratchawang", SubdistrictNameTh: "พระบรมมหาราชวัง", PostalCode: "10110"},
		{ID: 2, ProvinceCode: 10, DistrictCode: 101, SubdistrictCode: 10102, SubdistrictNameEn: "Wang Burapha Phirom", SubdistrictNameTh: "วังบูรพาภิรมย์", PostalCode: "10110"},
		{ID: 3, ProvinceCode: 10, DistrictCode: 102, SubdistrictCode: 10201, SubdistrictNameEn: "Dusit", SubdistrictNameTh: "ดุสิต", PostalCode: "10120"},
		{ID: 4, ProvinceCode: 20, DistrictCode: 201, SubdistrictCode: 20101, SubdistrictNameEn: "Bang Pla Soi", SubdistrictNameTh: "บางปลาสร้อย", PostalCode: "20000"},
		// Broken hierarchy: district 101 recorded under another province.
		{ID: 5, ProvinceCode: 99, DistrictCode: 101, SubdistrictCode: 99901, SubdistrictNameEn: "Orphan", SubdistrictNameTh: "ผิดจังหวัด", PostalCode: "99999"},
	}
}

func testSites() []models.Site {
	return []models.Site{{Name: "ThaiDeal", Logo: "thaideal.png"}}
}

func testSnapshot() *refdata.Snapshot {
	return refdata.NewSnapshot(testProvinces(), testDistricts(), testSubdistricts(), testSites())
}

func testHolder() *refdata.Holder {
	h := refdata.NewHolder()
	h.Publish(testSnapshot())
	return h
}

func filledState() models.FormState {
	return models.FormState{
		Website:      "thaideal",
		Username:     "player01",
		ReceiverName: "สมชาย ใจดี",
		HouseNo:      "99/1",
		Road:         "ราชดำเนิน",
		Soi:          "5",
		Village:      "หมู่บ้านสุข",
		Subdistrict:  "10101",
		District:     101,
		Province:     10,
		Postcode:     "10110",
		Phone:        "0812345678",
	}
}
