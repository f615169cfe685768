package whisper

import (
	"strings"
	"testing"
)

func TestWhisperValidate(t *testing.T) {
	for _, w := range []*Whisper{
		// Missing content.
		{
			ProjectID: 2,
			SenderID:  1,
		},
		// Content too long.
		{
			Content:   strings.Repeat("x", ContentMax+1),
			ProjectID: 2,
			SenderID:  1,
		},
		// Missing project.
		{
			Content:  "Consider a darker accent color.",
			SenderID: 1,
		},
		// Missing sender.
		{
			Content:   "Consider a darker accent color.",
			ProjectID: 2,
		},
	} {
		if err := w.Validate(); !IsInvalidWhisper(err) {
			t.Errorf("have %v, want %v", err, ErrInvalidWhisper)
		}
	}
}
