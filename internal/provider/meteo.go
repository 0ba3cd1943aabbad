package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agripulse/agripulse/internal/assembly"
	"github.com/agripulse/agripulse/internal/errs"
)

const defaultMeteoBaseURL = "https://api.open-meteo.com"

// OpenMeteo fetches environmental snapshots from the Open-Meteo forecast API.
// The API is keyless, so there is no not-configured state.
type OpenMeteo struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewOpenMeteo returns a client with a bounded request timeout.
func NewOpenMeteo() *OpenMeteo {
	return &OpenMeteo{
		BaseURL:    defaultMeteoBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type meteoResponse struct {
	Elevation float64 `json:"elevation"`
	Current   struct {
		Temperature2m      float64 `json:"temperature_2m"`
		RelativeHumidity2m float64 `json:"relative_humidity_2m"`
		Precipitation      float64 `json:"precipitation"`
		WindSpeed10m       float64 `json:"wind_speed_10m"`
	} `json:"current"`
	Hourly struct {
		SoilMoisture0To1cm []float64 `json:"soil_moisture_0_to_1cm"`
		SoilTemperature0cm []float64 `json:"soil_temperature_0cm"`
	} `json:"hourly"`
	Daily struct {
		PrecipitationSum []float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// Snapshot fetches current conditions, topsoil readings, and the 7-day rain
// outlook for the location.
func (c *OpenMeteo) Snapshot(ctx context.Context, latitude, longitude float64) (assembly.Snapshot, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", latitude))
	q.Set("longitude", fmt.Sprintf("%.4f", longitude))
	q.Set("current", "temperature_2m,relative_humidity_2m,precipitation,wind_speed_10m")
	q.Set("hourly", "soil_moisture_0_to_1cm,soil_temperature_0cm")
	q.Set("daily", "precipitation_sum")
	q.Set("forecast_days", "7")
	q.Set("timezone", "UTC")

	endpoint := strings.TrimRight(c.BaseURL, "/") + "/v1/forecast?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return assembly.Snapshot{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return assembly.Snapshot{}, fmt.Errorf("%w: open-meteo: %v", errs.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return assembly.Snapshot{}, fmt.Errorf("%w: open-meteo %s: %s", errs.ErrUpstream, resp.Status, strings.TrimSpace(string(data)))
	}

	var out meteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return assembly.Snapshot{}, fmt.Errorf("%w: decode open-meteo response: %v", errs.ErrUpstream, err)
	}

	snap := assembly.Snapshot{
		TemperatureC:    out.Current.Temperature2m,
		HumidityPct:     out.Current.RelativeHumidity2m,
		WindSpeedKMH:    out.Current.WindSpeed10m,
		PrecipitationMM: out.Current.Precipitation,
		ElevationM:      out.Elevation,
	}
	if len(out.Hourly.SoilMoisture0To1cm) > 0 {
		snap.SoilMoisture = out.Hourly.SoilMoisture0To1cm[0]
	}
	if len(out.Hourly.SoilTemperature0cm) > 0 {
		snap.SoilTempC = out.Hourly.SoilTemperature0cm[0]
	}
	for _, mm := range out.Daily.PrecipitationSum {
		snap.RainNext7DaysMM += mm
	}
	return snap, nil
}
