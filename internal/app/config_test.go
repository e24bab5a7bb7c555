package app

import (
	"testing"

	"embedctl/internal/ui"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		output  string
		want    ui.Format
		wantErr bool
	}{
		{
			name:  "defaults",
			debug: false,
			want:  ui.FormatTable,
		},
		{
			name:   "debug with json",
			debug:  true,
			output: "json",
			want:   ui.FormatJSON,
		},
		{
			name:    "unknown format",
			output:  "csv",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfig(tt.debug, tt.output, "1.0.0")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if cfg.Debug != tt.debug {
				t.Errorf("Debug = %v, want %v", cfg.Debug, tt.debug)
			}
			if cfg.Output != tt.want {
				t.Errorf("Output = %v, want %v", cfg.Output, tt.want)
			}
			if cfg.Version != "1.0.0" {
				t.Errorf("Version = %q, want 1.0.0", cfg.Version)
			}
		})
	}
}
