package main

import (
	"fmt"

	"github.com/gh-nvat/notesync/src/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change notesync settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective settings with the token hidden",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := settingsPath(root)
				if err != nil {
					return err
				}
				settings, err := config.NewLoader().Load(path)
				if err != nil {
					return fmt.Errorf("failed to load settings: %w", err)
				}
				out, err := yaml.Marshal(settings.Redacted())
				if err != nil {
					return fmt.Errorf("failed to encode settings: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Change one setting in the settings file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := settingsPath(root)
				if err != nil {
					return err
				}
				loader := config.NewLoader()
				// environment overrides must not leak into the file
				settings, err := loader.LoadFile(path)
				if err != nil {
					return fmt.Errorf("failed to load settings: %w", err)
				}
				if err := config.Set(settings, args[0], args[1]); err != nil {
					return err
				}
				return loader.Save(path, settings)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the settings file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := settingsPath(root)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
				return err
			},
		},
	)

	return cmd
}
