package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/prize_address/internal/models"
)

// TerritoryRepository reads the Thai address hierarchy and the site registry
// from Postgres. It satisfies refdata.Reader.
type TerritoryRepository struct {
	db *sqlx.DB
}

// NewTerritoryRepository creates a new TerritoryRepository
func NewTerritoryRepository(db *sqlx.DB) *TerritoryRepository {
	return &TerritoryRepository{db: db}
}

// GetAllProvinces returns all provinces
func (r *TerritoryRepository) GetAllProvinces(ctx context.Context) ([]models.Province, error) {
	query := `SELECT id, province_code, name_en, name_th FROM provinces ORDER BY id`

	provinces := []models.Province{}
	if err := r.db.SelectContext(ctx, &provinces, query); err != nil {
		return nil, err
	}
	return provinces, nil
}

// GetAllDistricts returns all districts
func (r *TerritoryRepository) GetAllDistricts(ctx context.Context) ([]models.District, error) {
	query := `SELECT id, province_code, district_code, name_en, name_th, postal_code
	          FROM districts ORDER BY id`

	districts := []models.District{}
	if err := r.db.SelectContext(ctx, &districts, query); err != nil {
		return nil, err
	}
	return districts, nil
}

// GetAllSubdistricts returns all subdistricts
func (r *TerritoryRepository) GetAllSubdistricts(ctx context.Context) ([]models.Subdistrict, error) {
	query := `SELECT id, province_code, district_code, subdistrict_code, name_en, name_th, postal_code
	          FROM subdistricts ORDER BY id`

	subdistricts := []models.Subdistrict{}
	if err := r.db.SelectContext(ctx, &subdistricts, query); err != nil {
		return nil, err
	}
	return subdistricts, nil
}

// GetAllSites returns the site registry
func (r *TerritoryRepository) GetAllSites(ctx context.Context) ([]models.Site, error) {
	query := `SELECT name, logo FROM sites WHERE is_active = true ORDER BY name`

	sites := []models.Site{}
	if err := r.db.SelectContext(ctx, &sites, query); err != nil {
		return nil, err
	}
	return sites, nil
}
