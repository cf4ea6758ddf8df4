package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/uritemplates/am"
	"github.com/teranos/uritemplates/errors"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and create am.toml configuration",
		Long: `Configuration sources (later overrides earlier):
1. Default values
2. System config (/etc/uritemplate/am.toml)
3. User config (~/.uritemplate/am.toml)
4. Project config (./am.toml, searched for up the directory tree)
5. Environment variables (URITEMPLATE_* prefix)`,
	}
	cmd.AddCommand(newConfigShowCmd(opts), newConfigInitCmd(), newConfigWhereCmd(opts), newConfigValidateCmd())
	return cmd
}

func newConfigShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration (--format toml, json, yaml)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := am.Load()
			if err != nil {
				return errors.Wrap(err, "failed to load config")
			}
			w := cmd.OutOrStdout()
			switch opts.format {
			case "json":
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return errors.Wrap(err, "failed to marshal config to JSON")
				}
				fmt.Fprintln(w, string(data))
			case "yaml":
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return errors.Wrap(err, "failed to marshal config to YAML")
				}
				fmt.Fprintf(w, "# uritemplate configuration\n%s", data)
			case "toml", "text", "":
				data, err := toml.Marshal(cfg)
				if err != nil {
					return errors.Wrap(err, "failed to marshal config to TOML")
				}
				fmt.Fprintf(w, "# uritemplate configuration\n%s", data)
			default:
				return errors.NewInvalidRequestError("unsupported format: %s (supported: toml, json, yaml)", opts.format)
			}
			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write a default am.toml (default ~/.uritemplate/am.toml)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := am.UserConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.WithHint(
					errors.NewInvalidRequestError("%s already exists", path),
					"pass --force to overwrite it; the old file is kept as .back1")
			}
			if err := am.Save(am.DefaultConfig(), path); err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printf("Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigWhereCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "where",
		Short: "Show where each setting comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := am.GetConfigIntrospection()
			if err != nil {
				return err
			}
			return emit(cmd, opts, settings, func(w io.Writer) error {
				data := pterm.TableData{{"Key", "Value", "Source"}}
				for _, s := range settings {
					source := string(s.Source)
					if s.SourcePath != "" {
						source += " (" + s.SourcePath + ")"
					}
					data = append(data, []string{s.Key, fmt.Sprint(s.Value), source})
				}
				return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
			})
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration, compiling every configured template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := am.Load()
			if err != nil {
				return errors.Wrap(err, "failed to load config")
			}
			if err := cfg.Validate(); err != nil {
				return errors.Wrap(err, "configuration validation failed")
			}
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printf("Configuration is valid (%d templates)\n", len(cfg.Templates))
			return nil
		},
	}
}
