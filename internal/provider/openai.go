package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/agripulse/agripulse/internal/assembly"
	"github.com/agripulse/agripulse/internal/errs"
)

const reportSystemPrompt = `You are an agronomist writing a short advisory report for a smallholder farm.
Respond with a single JSON object and nothing else, using exactly these keys:
"status" (one of "ok", "vigilance", "alert"),
"summary" (two sentences at most),
"weather_analysis", "soil_analysis",
"recommendations" (array of short imperative strings, most urgent first).`

const scriptSystemPrompt = `You turn farm advisory reports into a short spoken script for a voice message.
Write plain conversational text, no headings, no markdown, under 120 words.`

// OpenAI implements the report generator, narration script generator, and
// speech synthesizer against the OpenAI API. A single client is shared by all
// three; it is built once at startup.
type OpenAI struct {
	client openai.Client
	model  string
	voice  string
	blobs  BlobStore

	configured bool
}

// NewOpenAI builds the provider. With an empty API key it still constructs,
// but every call fails fast with ErrNotConfigured so callers can surface a
// clear 503 instead of a timeout.
func NewOpenAI(apiKey, model, voice string, blobs BlobStore) *OpenAI {
	if apiKey == "" {
		return &OpenAI{}
	}
	return &OpenAI{
		client:     openai.NewClient(option.WithAPIKey(apiKey)),
		model:      model,
		voice:      voice,
		blobs:      blobs,
		configured: true,
	}
}

// GenerateReport asks the model for the structured core report.
func (o *OpenAI) GenerateReport(ctx context.Context, fc assembly.FarmContext) (assembly.ReportContent, error) {
	if !o.configured {
		return assembly.ReportContent{}, fmt.Errorf("%w: OPENAI_API_KEY is not set", errs.ErrNotConfigured)
	}

	prompt := reportPrompt(fc)
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(reportSystemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return assembly.ReportContent{}, fmt.Errorf("%w: chat completion: %v", errs.ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return assembly.ReportContent{}, fmt.Errorf("%w: empty completion", errs.ErrUpstream)
	}

	content, err := parseReportContent(resp.Choices[0].Message.Content)
	if err != nil {
		return assembly.ReportContent{}, fmt.Errorf("%w: %v", errs.ErrUpstream, err)
	}
	return content, nil
}

// NarrationScript produces spoken-word text for the report in the owner's
// language.
func (o *OpenAI) NarrationScript(ctx context.Context, content assembly.ReportContent, farmName, language string) (string, error) {
	if !o.configured {
		return "", fmt.Errorf("%w: OPENAI_API_KEY is not set", errs.ErrNotConfigured)
	}
	if language == "" {
		language = "en"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Farm: %s\nLanguage: %s\nStatus: %s\nSummary: %s\n", farmName, language, content.Status, content.Summary)
	fmt.Fprintf(&b, "Weather: %s\nSoil: %s\n", content.WeatherAnalysis, content.SoilAnalysis)
	for _, rec := range content.Recommendations {
		fmt.Fprintf(&b, "Recommendation: %s\n", rec)
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(scriptSystemPrompt),
			openai.UserMessage(b.String()),
		},
		Temperature: openai.Float(0.5),
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", errs.ErrUpstream, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty script", errs.ErrUpstream)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func reportPrompt(fc assembly.FarmContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Farm %q grows %s on %.1f hectares at (%.4f, %.4f), elevation %.0f m.\n",
		fc.Farm.Name, fc.Farm.Crop, fc.Farm.AreaHectares, fc.Farm.Latitude, fc.Farm.Longitude, fc.Snapshot.ElevationM)
	fmt.Fprintf(&b, "Current conditions: %.1f C, humidity %.0f%%, wind %.0f km/h, precipitation %.1f mm.\n",
		fc.Snapshot.TemperatureC, fc.Snapshot.HumidityPct, fc.Snapshot.WindSpeedKMH, fc.Snapshot.PrecipitationMM)
	fmt.Fprintf(&b, "Rain expected over the next 7 days: %.1f mm.\n", fc.Snapshot.RainNext7DaysMM)
	fmt.Fprintf(&b, "Topsoil moisture %.3f m3/m3, soil temperature %.1f C.\n",
		fc.Snapshot.SoilMoisture, fc.Snapshot.SoilTempC)
	return b.String()
}

// parseReportContent decodes the model output, tolerating a fenced code
// block, and normalizes the status field.
func parseReportContent(raw string) (assembly.ReportContent, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
		raw = strings.TrimSpace(raw)
	}

	var content assembly.ReportContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return assembly.ReportContent{}, fmt.Errorf("parse report content: %v", err)
	}
	if content.Summary == "" {
		return assembly.ReportContent{}, fmt.Errorf("report content missing summary")
	}
	switch content.Status = strings.ToLower(strings.TrimSpace(content.Status)); content.Status {
	case "ok", "vigilance", "alert":
	default:
		content.Status = "vigilance"
	}
	return content, nil
}
