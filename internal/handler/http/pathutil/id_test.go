package pathutil

import (
	"errors"
	"testing"
)

func TestExtractID(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		prefix    string
		wantID    int64
		wantError error
	}{
		{
			name:      "valid digest ID",
			path:      "/digests/123",
			prefix:    "/digests/",
			wantID:    123,
			wantError: nil,
		},
		{
			name:      "valid user ID",
			path:      "/users/456",
			prefix:    "/users/",
			wantID:    456,
			wantError: nil,
		},
		{
			name:      "invalid ID - not a number",
			path:      "/digests/abc",
			prefix:    "/digests/",
			wantID:    0,
			wantError: ErrInvalidID,
		},
		{
			name:      "invalid ID - zero",
			path:      "/digests/0",
			prefix:    "/digests/",
			wantID:    0,
			wantError: ErrInvalidID,
		},
		{
			name:      "invalid ID - negative",
			path:      "/digests/-1",
			prefix:    "/digests/",
			wantID:    0,
			wantError: ErrInvalidID,
		},
		{
			name:      "invalid ID - empty",
			path:      "/digests/",
			prefix:    "/digests/",
			wantID:    0,
			wantError: ErrInvalidID,
		},
		{
			name:      "invalid ID - with extra path",
			path:      "/digests/123/comments",
			prefix:    "/digests/",
			wantID:    0,
			wantError: ErrInvalidID,
		},
		{
			name:      "large valid ID",
			path:      "/digests/9223372036854775807",
			prefix:    "/digests/",
			wantID:    9223372036854775807,
			wantError: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotErr := ExtractID(tt.path, tt.prefix)

			if gotID != tt.wantID {
				t.Errorf("ExtractID() id = %v, want %v", gotID, tt.wantID)
			}

			if !errors.Is(gotErr, tt.wantError) {
				t.Errorf("ExtractID() error = %v, want %v", gotErr, tt.wantError)
			}
		})
	}
}
