package main

import (
	"fmt"

	"github.com/gh-nvat/notesync/src/internal/runner"
	"github.com/gh-nvat/notesync/src/pkg/config"
	"github.com/gh-nvat/notesync/src/pkg/diff"
	"github.com/gh-nvat/notesync/src/pkg/models"
	"github.com/gh-nvat/notesync/src/pkg/notestore"
	"github.com/gh-nvat/notesync/src/pkg/policy"
	"github.com/gh-nvat/notesync/src/pkg/template"
	"github.com/gh-nvat/notesync/src/pkg/trace"
	"github.com/spf13/cobra"
)

func newPushCmd(root *rootOptions) *cobra.Command {
	opts := &runner.Options{}
	cmd := &cobra.Command{
		Use:   "push FILE",
		Short: "Upload the note, creating it on first push",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.File = args[0]
			return run(cmd, root, models.ActionPush, opts)
		},
	}
	addVersionFlag(cmd, opts)
	cmd.Flags().BoolVar(&opts.SkipChecks, "skip-checks", false, "Push even when push checks fail")
	cmd.Flags().BoolVar(&opts.NoCopy, "no-copy", false, "Do not copy the link of a new note to the clipboard")
	return cmd
}

func newPullCmd(root *rootOptions) *cobra.Command {
	opts := &runner.Options{}
	var force, newFile bool
	cmd := &cobra.Command{
		Use:   "pull FILE",
		Short: "Merge the remote note into the file with conflict markers",
		Long: `Merge the remote note into the file. Lines that differ are wrapped in
conflict markers: the local lines between "<<<<<<< HEAD" and "=======", the
remote lines between "=======" and ">>>>>>>".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.File = args[0]
			action := models.ActionPull
			switch {
			case force:
				action = models.ActionPullForce
			case newFile:
				action = models.ActionPullNewFile
			}
			return run(cmd, root, action, opts)
		},
	}
	addVersionFlag(cmd, opts)
	cmd.Flags().BoolVar(&force, "force", false, "Replace the local body with the remote note")
	cmd.Flags().BoolVar(&newFile, "new-file", false, "Write the remote note to <name>-<version>.<ext>")
	cmd.MarkFlagsMutuallyExclusive("force", "new-file")
	return cmd
}

func newDiffCmd(root *rootOptions) *cobra.Command {
	opts := &runner.Options{}
	cmd := &cobra.Command{
		Use:   "diff FILE",
		Short: "Show a unified diff of the local body against the remote note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.File = args[0]
			return run(cmd, root, models.ActionDiff, opts)
		},
	}
	addVersionFlag(cmd, opts)
	return cmd
}

func newStatusCmd(root *rootOptions) *cobra.Command {
	opts := &runner.Options{}
	return &cobra.Command{
		Use:   "status FILE",
		Short: "Compare the file with every linked version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.File = args[0]
			return run(cmd, root, models.ActionStatus, opts)
		},
	}
}

func addVersionFlag(cmd *cobra.Command, opts *runner.Options) {
	cmd.Flags().StringVar(&opts.Version, "version", models.VersionOwner,
		fmt.Sprintf("Note version to use: %v", models.Versions))
}

// run wires the collaborators for one action and prints its summary
func run(cmd *cobra.Command, root *rootOptions, action string, opts *runner.Options) error {
	shutdown, err := trace.InitTracer("notesync", root.traceDir)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer shutdown()

	path, err := settingsPath(root)
	if err != nil {
		return err
	}
	settings, err := config.NewLoader().Load(path)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	store, err := notestore.New(settings)
	if err != nil {
		return err
	}

	renderer := template.NewRenderer(settings.TemplatesPath)
	r, err := runner.NewRunner(cmd.Context(), opts, settings, store,
		diff.NewDiffer(), policy.NewEvaluator(settings.PoliciesPath), renderer)
	if err != nil {
		return err
	}

	result, err := r.Process(action)
	if err != nil {
		return err
	}

	summary, err := renderer.RenderSummary(result)
	if err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), summary)
	return err
}

func settingsPath(root *rootOptions) (string, error) {
	if root.configPath != "" {
		return root.configPath, nil
	}
	return config.DefaultPath()
}
