package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenMeteo_Snapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1/forecast") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("latitude"); got != "33.5731" {
			t.Errorf("latitude = %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"elevation": 57.0,
			"current": {"temperature_2m": 28.4, "relative_humidity_2m": 41, "precipitation": 0, "wind_speed_10m": 14.2},
			"hourly": {"soil_moisture_0_to_1cm": [0.118, 0.117], "soil_temperature_0cm": [31.2, 30.8]},
			"daily": {"precipitation_sum": [0, 0, 1.25, 0, 0, 3.5, 0]}
		}`))
	}))
	defer srv.Close()

	c := NewOpenMeteo()
	c.BaseURL = srv.URL

	snap, err := c.Snapshot(context.Background(), 33.5731, -7.5898)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.TemperatureC != 28.4 || snap.HumidityPct != 41 || snap.WindSpeedKMH != 14.2 {
		t.Errorf("unexpected current conditions: %+v", snap)
	}
	if snap.SoilMoisture != 0.118 || snap.SoilTempC != 31.2 {
		t.Errorf("unexpected soil readings: %+v", snap)
	}
	if snap.RainNext7DaysMM != 4.75 {
		t.Errorf("rain next 7 days = %v, want 4.75", snap.RainNext7DaysMM)
	}
	if snap.ElevationM != 57.0 {
		t.Errorf("elevation = %v", snap.ElevationM)
	}
}

func TestOpenMeteo_Snapshot_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "over capacity", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewOpenMeteo()
	c.BaseURL = srv.URL

	if _, err := c.Snapshot(context.Background(), 0, 0); err == nil {
		t.Fatal("expected error")
	}
}
