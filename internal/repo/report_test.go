package repo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/agripulse/agripulse/internal/models"
	"github.com/lib/pq"
)

var reportCols = []string{
	"id", "owner_id", "farm_id", "status", "summary", "weather_analysis", "soil_analysis",
	"recommendations", "script_text", "audio_url",
	"enrichment_attempted", "enrichment_succeeded", "enrichment_error", "created_at",
}

func TestReportRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO reports`).
		WithArgs(1, 2, "vigilance", "Dry week ahead", "Low rainfall expected", "Moisture dropping",
			pq.Array([]string{"Irrigate tonight", "Check drip lines"}), "", "",
			true, false, "deadline exceeded").
		WillReturnRows(sqlmock.NewRows(reportCols).
			AddRow(5, 1, 2, "vigilance", "Dry week ahead", "Low rainfall expected", "Moisture dropping",
				"{\"Irrigate tonight\",\"Check drip lines\"}", "", "",
				true, false, "deadline exceeded", now))

	r := NewReportRepo(db)
	rep, err := r.Create(context.Background(), models.Report{
		OwnerID: 1, FarmID: 2,
		Status:          "vigilance",
		Summary:         "Dry week ahead",
		WeatherAnalysis: "Low rainfall expected",
		SoilAnalysis:    "Moisture dropping",
		Recommendations: []string{"Irrigate tonight", "Check drip lines"},
		Enrichment:      models.Enrichment{Attempted: true, Succeeded: false, Error: "deadline exceeded"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rep.ID != 5 || rep.Status != "vigilance" {
		t.Errorf("unexpected report: %+v", rep)
	}
	if len(rep.Recommendations) != 2 || rep.Recommendations[0] != "Irrigate tonight" {
		t.Errorf("unexpected recommendations: %v", rep.Recommendations)
	}
	if !rep.Enrichment.Attempted || rep.Enrichment.Succeeded || rep.Enrichment.Error == "" {
		t.Errorf("unexpected enrichment: %+v", rep.Enrichment)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestReportRepo_LatestByFarm(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, owner_id, farm_id, status, .* FROM reports WHERE farm_id`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(reportCols).
			AddRow(9, 1, 2, "ok", "All good", "Stable", "Healthy",
				"{\"Keep current irrigation\"}", "narration", "https://cdn.example/r9.mp3",
				true, true, "", now))

	r := NewReportRepo(db)
	rep, err := r.LatestByFarm(context.Background(), 2)
	if err != nil {
		t.Fatalf("LatestByFarm: %v", err)
	}
	if rep == nil {
		t.Fatal("expected report, got nil")
	}
	if rep.ID != 9 || rep.AudioURL != "https://cdn.example/r9.mp3" || !rep.Enrichment.Succeeded {
		t.Errorf("unexpected report: %+v", rep)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestReportRepo_LatestByFarm_NoHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, owner_id, farm_id, status, .* FROM reports WHERE farm_id`).
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)

	r := NewReportRepo(db)
	rep, err := r.LatestByFarm(context.Background(), 404)
	if err != nil {
		t.Fatalf("LatestByFarm: %v", err)
	}
	if rep != nil {
		t.Errorf("expected nil, got %+v", rep)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
