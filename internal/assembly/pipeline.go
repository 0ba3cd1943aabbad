// Package assembly builds a deliverable report for a farm. The core content
// (status, summary, analyses, recommendations) is generated synchronously and
// must succeed; the narration enrichment (script + audio) races a deadline and
// is allowed to lose without affecting the core report.
package assembly

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agripulse/agripulse/internal/errs"
	"github.com/agripulse/agripulse/internal/metrics"
	"github.com/agripulse/agripulse/internal/models"
)

// Snapshot is the environmental context fed to the report generator. The
// upstream data source is external; we only care about its shape.
type Snapshot struct {
	TemperatureC    float64 `json:"temperature_c"`
	HumidityPct     float64 `json:"humidity_pct"`
	WindSpeedKMH    float64 `json:"wind_speed_kmh"`
	PrecipitationMM float64 `json:"precipitation_mm"`
	RainNext7DaysMM float64 `json:"rain_next_7_days_mm"`
	SoilMoisture    float64 `json:"soil_moisture"`
	SoilTempC       float64 `json:"soil_temp_c"`
	ElevationM      float64 `json:"elevation_m"`
}

// FarmContext bundles everything the generator needs for one report.
type FarmContext struct {
	Farm     models.Farm
	Owner    models.User
	Snapshot Snapshot
}

// ReportContent is the structured output of the report generator: the core
// fields of a report, before persistence.
type ReportContent struct {
	Status          string   `json:"status"`
	Summary         string   `json:"summary"`
	WeatherAnalysis string   `json:"weather_analysis"`
	SoilAnalysis    string   `json:"soil_analysis"`
	Recommendations []string `json:"recommendations"`
}

// ReportGenerator produces the core report content.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, fc FarmContext) (ReportContent, error)
}

// ScriptGenerator turns report content into narration text in the owner's
// language.
type ScriptGenerator interface {
	NarrationScript(ctx context.Context, content ReportContent, farmName, language string) (string, error)
}

// SpeechSynthesizer renders narration text to audio and returns a publicly
// retrievable URL.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, filename string) (string, error)
}

// SnapshotProvider fetches the environmental snapshot for a location.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, latitude, longitude float64) (Snapshot, error)
}

// ReportStore persists assembled reports.
type ReportStore interface {
	Create(ctx context.Context, rep models.Report) (*models.Report, error)
}

// Pipeline assembles reports. Provider clients are constructed once at
// process start and injected here; the pipeline never builds its own.
type Pipeline struct {
	Snapshots SnapshotProvider
	Generator ReportGenerator
	Scripts   ScriptGenerator
	Speech    SpeechSynthesizer
	Reports   ReportStore

	// GenerateTimeout bounds the snapshot fetch plus core generation.
	GenerateTimeout time.Duration
	// EnrichTimeout bounds the script+audio race. When it fires first the
	// report ships without narration.
	EnrichTimeout time.Duration

	Logger *slog.Logger
}

// Assemble builds, enriches, persists, and returns a report for the farm.
// A core-generation failure fails the whole call; an enrichment failure or
// timeout only leaves the narration fields empty, recorded in
// Report.Enrichment.
func (p *Pipeline) Assemble(ctx context.Context, farm models.Farm, owner models.User) (*models.Report, error) {
	genCtx, cancel := context.WithTimeout(ctx, p.GenerateTimeout)
	defer cancel()

	snap, err := p.Snapshots.Snapshot(genCtx, farm.Latitude, farm.Longitude)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot for farm %d: %v", errs.ErrUpstream, farm.ID, err)
	}

	content, err := p.Generator.GenerateReport(genCtx, FarmContext{Farm: farm, Owner: owner, Snapshot: snap})
	if err != nil {
		return nil, fmt.Errorf("%w: generate report for farm %d: %v", errs.ErrUpstream, farm.ID, err)
	}

	report := models.Report{
		OwnerID:         farm.OwnerID,
		FarmID:          farm.ID,
		Status:          content.Status,
		Summary:         content.Summary,
		WeatherAnalysis: content.WeatherAnalysis,
		SoilAnalysis:    content.SoilAnalysis,
		Recommendations: content.Recommendations,
	}

	p.enrich(ctx, &report, content, farm.Name, owner.Language)

	saved, err := p.Reports.Create(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("persist report for farm %d: %w", farm.ID, err)
	}
	return saved, nil
}

type enrichResult struct {
	script   string
	audioURL string
	err      error
}

// enrich races the script+audio sequence against EnrichTimeout. The losing
// branch is cancelled via context and writes into a buffered channel, so a
// late finish neither blocks nor panics. No retry: a failed enrichment ships
// the core report as-is.
func (p *Pipeline) enrich(ctx context.Context, report *models.Report, content ReportContent, farmName, language string) {
	report.Enrichment.Attempted = true

	ectx, cancel := context.WithTimeout(ctx, p.EnrichTimeout)
	defer cancel()

	ch := make(chan enrichResult, 1)
	go func() {
		script, err := p.Scripts.NarrationScript(ectx, content, farmName, language)
		if err != nil {
			ch <- enrichResult{err: fmt.Errorf("narration script: %w", err)}
			return
		}
		filename := fmt.Sprintf("report-%d-%d.mp3", report.FarmID, time.Now().UnixNano())
		url, err := p.Speech.Synthesize(ectx, script, filename)
		if err != nil {
			ch <- enrichResult{err: fmt.Errorf("synthesize audio: %w", err)}
			return
		}
		ch <- enrichResult{script: script, audioURL: url}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			report.Enrichment.Error = res.err.Error()
			metrics.IncEnrichment("failed")
			p.logger().Warn("enrichment failed", "farm_id", report.FarmID, "error", res.err)
			return
		}
		report.ScriptText = res.script
		report.AudioURL = res.audioURL
		report.Enrichment.Succeeded = true
		metrics.IncEnrichment("succeeded")
	case <-ectx.Done():
		report.Enrichment.Error = ectx.Err().Error()
		metrics.IncEnrichment("failed")
		p.logger().Warn("enrichment deadline exceeded", "farm_id", report.FarmID, "timeout", p.EnrichTimeout)
	}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
