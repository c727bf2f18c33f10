package classifier

import (
	"context"
	"testing"

	"district-digest/internal/domain/entity"
)

func TestKeyword_Classify(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		want        string
	}{
		{
			name:  "theft in title",
			title: "Theft reported at Guntur market",
			want:  entity.CategoryTheft,
		},
		{
			name:        "theft in description only",
			title:       "Two held after market incident",
			description: "Police recovered stolen goods after the theft.",
			want:        entity.CategoryTheft,
		},
		{
			name:  "noise complaint",
			title: "Noise complaint filed against function hall",
			want:  entity.CategoryPublicNoise,
		},
		{
			name:  "theft wins over noise",
			title: "Noise complaint leads police to theft ring",
			want:  entity.CategoryTheft,
		},
		{
			name:  "general crime",
			title: "Police arrest three in assault case",
			want:  entity.CategoryCrime,
		},
		{
			name:  "case insensitive",
			title: "THEFT AT RAILWAY STATION",
			want:  entity.CategoryTheft,
		},
		{
			name: "empty input",
			want: entity.CategoryCrime,
		},
	}

	k := NewKeyword()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := k.Classify(context.Background(), tt.title, tt.description)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify(%q, %q) = %q, want %q", tt.title, tt.description, got, tt.want)
			}
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Theft", entity.CategoryTheft},
		{"theft", entity.CategoryTheft},
		{" Public Noise \n", entity.CategoryPublicNoise},
		{"Crime", entity.CategoryCrime},
		{`"Theft."`, entity.CategoryTheft},
		{"The category is Theft", entity.CategoryTheft},
		{"This is a noise complaint", entity.CategoryPublicNoise},
		{"Burglary", entity.CategoryCrime},
		{"", entity.CategoryCrime},
	}

	for _, tt := range tests {
		if got := normalizeCategory(tt.raw); got != tt.want {
			t.Errorf("normalizeCategory(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestBuildClassifyPrompt_TruncatesRuneSafe(t *testing.T) {
	// Telugu script: multi-byte runes must not be split.
	long := ""
	for i := 0; i < maxInputRunes+100; i++ {
		long += "హ"
	}

	prompt := buildClassifyPrompt(long, "")

	for _, r := range prompt {
		if r == '�' {
			t.Fatal("prompt contains a replacement character, truncation split a rune")
		}
	}
	if got := len([]rune(prompt)); got > maxInputRunes+200 {
		t.Errorf("prompt rune length = %d, input was not truncated", got)
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		env      map[string]string
		wantName string
		wantErr  bool
	}{
		{name: "default is keyword", kind: "", wantName: KeywordName},
		{name: "explicit keyword", kind: "keyword", wantName: KeywordName},
		{name: "noop", kind: "noop", wantName: NoOpName},
		{
			name:     "claude without key degrades to keyword",
			kind:     "claude",
			wantName: KeywordName,
		},
		{
			name:     "claude with key",
			kind:     "claude",
			env:      map[string]string{"ANTHROPIC_API_KEY": "test-key"},
			wantName: ClaudeName,
		},
		{
			name:     "openai with key",
			kind:     "openai",
			env:      map[string]string{"OPENAI_API_KEY": "test-key"},
			wantName: OpenAIName,
		},
		{name: "unknown type", kind: "markov", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CLASSIFIER_TYPE", tt.kind)
			t.Setenv("ANTHROPIC_API_KEY", tt.env["ANTHROPIC_API_KEY"])
			t.Setenv("OPENAI_API_KEY", tt.env["OPENAI_API_KEY"])

			c, err := FromEnv(nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("FromEnv() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("FromEnv() error = %v", err)
			}
			if c.Name() != tt.wantName {
				t.Errorf("FromEnv() selected %q, want %q", c.Name(), tt.wantName)
			}
		})
	}
}

func TestNoOp_Classify(t *testing.T) {
	got, err := NewNoOp().Classify(context.Background(), "Theft at market", "stolen goods")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got != entity.CategoryCrime {
		t.Errorf("Classify() = %q, want %q", got, entity.CategoryCrime)
	}
}
