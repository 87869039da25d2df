package cli

import (
	"reflect"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantMode string
		wantRest []string
		wantErr  bool
	}{
		{
			name:     "mode flag",
			args:     []string{"--mode=api-service", "--max-concurrent=50"},
			wantMode: ModeAPI,
			wantRest: []string{"--max-concurrent=50"},
		},
		{
			name:     "subcommand shorthand",
			args:     []string{"worker", "--prefetch=4"},
			wantMode: ModeWorker,
			wantRest: []string{"--prefetch=4"},
		},
		{
			name:     "alias normalized",
			args:     []string{"--mode=api"},
			wantMode: ModeAPI,
		},
		{
			name:    "missing mode",
			args:    []string{"--max-concurrent=50"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, rest, err := ParseMode(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseMode() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode() error = %v", err)
			}
			if mode != tt.wantMode {
				t.Errorf("mode = %q, want %q", mode, tt.wantMode)
			}
			if tt.wantRest != nil && !reflect.DeepEqual(rest, tt.wantRest) {
				t.Errorf("rest = %v, want %v", rest, tt.wantRest)
			}
		})
	}
}
