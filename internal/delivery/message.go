// Package delivery composes WhatsApp-ready message bodies from reports and
// sends them through a messenger.
package delivery

import (
	"strings"

	"github.com/agripulse/agripulse/internal/models"
)

// maxRecommendations caps the bullets in a message so it stays readable on a
// phone screen; the full list lives in the report itself.
const maxRecommendations = 3

// ComposeMessage renders a report into a WhatsApp text body plus media
// attachments. Audio is attached only when the schedule asks for it and the
// report actually has it; a report whose enrichment failed degrades to text
// with no placeholder.
func ComposeMessage(rep models.Report, s models.Schedule) (body string, mediaURLs []string) {
	var b strings.Builder

	if s.MessagePrefix != "" {
		b.WriteString(s.MessagePrefix)
		b.WriteString("\n\n")
	}

	b.WriteString(statusIndicator(rep.Status))
	b.WriteString(" *")
	b.WriteString(s.FarmName)
	b.WriteString("* — ")
	b.WriteString(statusLabel(rep.Status))
	b.WriteString("\n\n")
	b.WriteString(rep.Summary)

	if len(rep.Recommendations) > 0 {
		b.WriteString("\n")
		recs := rep.Recommendations
		if len(recs) > maxRecommendations {
			recs = recs[:maxRecommendations]
		}
		for _, rec := range recs {
			b.WriteString("\n• ")
			b.WriteString(rec)
		}
	}

	if s.IncludeAudio && rep.AudioURL != "" {
		mediaURLs = append(mediaURLs, rep.AudioURL)
	}
	return b.String(), mediaURLs
}

func statusIndicator(status string) string {
	switch status {
	case models.ReportStatusOK:
		return "✅"
	case models.ReportStatusVigilance:
		return "⚠️"
	case models.ReportStatusAlert:
		return "🚨"
	default:
		return "ℹ️"
	}
}

func statusLabel(status string) string {
	switch status {
	case models.ReportStatusOK:
		return "All clear"
	case models.ReportStatusVigilance:
		return "Vigilance"
	case models.ReportStatusAlert:
		return "Alert"
	default:
		return "Update"
	}
}
