package repo

import (
	"context"
	"database/sql"

	"github.com/agripulse/agripulse/internal/models"
	"github.com/lib/pq"
)

const reportColumns = `id, owner_id, farm_id, status, summary, weather_analysis, soil_analysis,
		recommendations, script_text, audio_url,
		enrichment_attempted, enrichment_succeeded, enrichment_error, created_at`

// ReportRepo persists generated reports.
type ReportRepo struct {
	DB *sql.DB
}

// NewReportRepo returns a new ReportRepo.
func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{DB: db}
}

// Create inserts a report (core fields plus whatever enrichment was obtained)
// and returns it with id and created_at set. Reports are immutable afterward.
func (r *ReportRepo) Create(ctx context.Context, rep models.Report) (*models.Report, error) {
	query := `
		INSERT INTO reports (owner_id, farm_id, status, summary, weather_analysis, soil_analysis,
			recommendations, script_text, audio_url,
			enrichment_attempted, enrichment_succeeded, enrichment_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + reportColumns
	row := r.DB.QueryRowContext(ctx, query,
		rep.OwnerID, rep.FarmID, rep.Status, rep.Summary, rep.WeatherAnalysis, rep.SoilAnalysis,
		pq.Array(rep.Recommendations), rep.ScriptText, rep.AudioURL,
		rep.Enrichment.Attempted, rep.Enrichment.Succeeded, rep.Enrichment.Error,
	)
	return scanReport(row)
}

// GetByID returns one report, or nil if not found.
func (r *ReportRepo) GetByID(ctx context.Context, id int) (*models.Report, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	rep, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rep, err
}

// LatestByFarm returns the most recent report for a farm, or nil when the
// farm has no history yet.
func (r *ReportRepo) LatestByFarm(ctx context.Context, farmID int) (*models.Report, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE farm_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`,
		farmID)
	rep, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rep, err
}

// ListByFarm returns a farm's reports, newest first.
func (r *ReportRepo) ListByFarm(ctx context.Context, farmID, limit, offset int) ([]models.Report, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE farm_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		farmID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rep)
	}
	return list, rows.Err()
}

func scanReport(row rowScanner) (*models.Report, error) {
	var (
		rep  models.Report
		recs pq.StringArray
	)
	err := row.Scan(
		&rep.ID, &rep.OwnerID, &rep.FarmID, &rep.Status, &rep.Summary,
		&rep.WeatherAnalysis, &rep.SoilAnalysis, &recs, &rep.ScriptText, &rep.AudioURL,
		&rep.Enrichment.Attempted, &rep.Enrichment.Succeeded, &rep.Enrichment.Error,
		&rep.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rep.Recommendations = []string(recs)
	return &rep, nil
}
