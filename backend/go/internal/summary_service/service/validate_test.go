package service

import (
	"errors"
	"strings"
	"testing"

	"Abridge_1.0/backend/go/internal/config"
	"Abridge_1.0/backend/go/internal/models"
)

func TestValidateRequest(t *testing.T) {
	policy := config.Default().Summary

	tests := []struct {
		name     string
		text     string
		typ      string
		wantErr  error
		wantType models.SummaryType
	}{
		{name: "49 characters", text: strings.Repeat("a", 49), typ: "short", wantErr: ErrContentTooShort},
		{name: "exactly 50", text: strings.Repeat("a", 50), typ: "short", wantType: models.SummaryShort},
		{name: "whitespace padding ignored", text: "   " + strings.Repeat("a", 49) + "\n\n", wantErr: ErrContentTooShort},
		{name: "too long", text: strings.Repeat("a", 15001), typ: "long", wantErr: ErrContentTooLong},
		{name: "upper bound", text: strings.Repeat("a", 15000), typ: "long", wantType: models.SummaryLong},
		{name: "default type", text: strings.Repeat("a", 60), wantType: models.SummaryMedium},
		{name: "case insensitive type", text: strings.Repeat("a", 60), typ: " LONG ", wantType: models.SummaryLong},
		{name: "unknown type", text: strings.Repeat("a", 60), typ: "tiny", wantErr: models.ErrInvalidSummaryType},
		{name: "counts runes not bytes", text: strings.Repeat("摘", 50), wantType: models.SummaryMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ValidateRequest(policy, tt.text, tt.typ)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.SummaryType != tt.wantType {
				t.Errorf("type = %s, want %s", req.SummaryType, tt.wantType)
			}
		})
	}
}

func TestBuildPromptMentionsLengthTarget(t *testing.T) {
	for _, st := range models.SummaryTypes {
		p := BuildPrompt("some text to condense", st)
		if !strings.Contains(p, "some text to condense") {
			t.Errorf("%s prompt does not include the source text", st)
		}
		if !strings.Contains(p, lengthTargets[st]) {
			t.Errorf("%s prompt does not include its length target", st)
		}
	}
}
