package repo

import (
	"context"
	"database/sql"

	"github.com/agripulse/agripulse/internal/models"
)

const farmColumns = `id, owner_id, name, latitude, longitude, area_hectares, crop, created_at`

// FarmRepo persists farms.
type FarmRepo struct {
	DB *sql.DB
}

// NewFarmRepo returns a new FarmRepo.
func NewFarmRepo(db *sql.DB) *FarmRepo {
	return &FarmRepo{DB: db}
}

// Create inserts a farm and returns it with id set.
func (r *FarmRepo) Create(ctx context.Context, f models.Farm) (*models.Farm, error) {
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO farms (owner_id, name, latitude, longitude, area_hectares, crop)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+farmColumns,
		f.OwnerID, f.Name, f.Latitude, f.Longitude, f.AreaHectares, f.Crop)
	return scanFarm(row)
}

// GetByID returns one farm, or nil if not found.
func (r *FarmRepo) GetByID(ctx context.Context, id int) (*models.Farm, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+farmColumns+` FROM farms WHERE id = $1`, id)
	f, err := scanFarm(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return f, err
}

// ListByOwner returns the owner's farms, oldest first.
func (r *FarmRepo) ListByOwner(ctx context.Context, ownerID int) ([]models.Farm, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+farmColumns+` FROM farms WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Farm
	for rows.Next() {
		f, err := scanFarm(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *f)
	}
	return list, rows.Err()
}

// Delete removes a farm; schedules and reports cascade in the database.
func (r *FarmRepo) Delete(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM farms WHERE id = $1`, id)
	return err
}

func scanFarm(row rowScanner) (*models.Farm, error) {
	var f models.Farm
	err := row.Scan(&f.ID, &f.OwnerID, &f.Name, &f.Latitude, &f.Longitude,
		&f.AreaHectares, &f.Crop, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
