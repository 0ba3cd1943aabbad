package provider

import (
	"context"
	"fmt"
	"io"

	openai "github.com/openai/openai-go/v3"

	"github.com/agripulse/agripulse/internal/errs"
)

// Synthesize renders the script to MP3 via the speech endpoint, stores the
// audio in the blob store, and returns its URL.
func (o *OpenAI) Synthesize(ctx context.Context, text, filename string) (string, error) {
	if !o.configured {
		return "", fmt.Errorf("%w: OPENAI_API_KEY is not set", errs.ErrNotConfigured)
	}

	voice := o.voice
	if voice == "" {
		voice = "alloy"
	}
	resp, err := o.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModelTTS1,
		Voice:          openai.AudioSpeechNewParamsVoice(voice),
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return "", fmt.Errorf("%w: speech: %v", errs.ErrUpstream, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read audio: %v", errs.ErrUpstream, err)
	}
	url, err := o.blobs.Put(ctx, filename, data)
	if err != nil {
		return "", fmt.Errorf("store audio: %w", err)
	}
	return url, nil
}
