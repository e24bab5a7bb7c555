package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"embedctl/internal/config"
	"embedctl/internal/ui"
)

// configView is the printable form of the stored config. The API key is
// always masked.
type configView struct {
	Path               string `json:"path" yaml:"path"`
	Region             string `json:"region" yaml:"region"`
	APIKey             string `json:"apiKey" yaml:"apiKey"`
	DefaultEnvironment string `json:"defaultEnvironment,omitempty" yaml:"defaultEnvironment,omitempty"`
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ok := application.Store().Get()
			if !ok {
				return config.ErrNotAuthenticated
			}
			view := configView{
				Path:               application.Store().Path(),
				Region:             string(cfg.Region),
				APIKey:             cfg.MaskedAPIKey(),
				DefaultEnvironment: cfg.DefaultEnvironment,
			}
			return ui.Render(application.Printer().Out(), application.Config().Output, view, func() string {
				var b strings.Builder
				b.WriteString("Configuration file:  " + view.Path + "\n")
				b.WriteString("Region:              " + cfg.Region.Display() + "\n")
				b.WriteString("API key:             " + view.APIKey + "\n")
				def := view.DefaultEnvironment
				if def == "" {
					def = "not set"
				}
				b.WriteString("Default environment: " + def)
				return b.String()
			})
		},
	}
}
