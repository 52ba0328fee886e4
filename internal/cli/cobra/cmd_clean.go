package cobra

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"funcpack/internal/commands"
	"funcpack/internal/errors"
	"funcpack/internal/exec"
	"funcpack/internal/fs"
)

func newCleanCmd() *cobra.Command {
	var projectDir string
	var publish bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove leftover build state from the project",
		Long: `Remove leftover build state from the project.

Behavior:
  - removes the intermediate build directory if one was left behind
  - refuses to touch anything outside the project root

  with --publish:
  - also removes the publish directory with all archives and logs

Confirmation:
  removing the publish directory is destructive; you must type 'publish'
  to confirm the operation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			stderr := cmd.ErrOrStderr()

			cwd, err := os.Getwd()
			if err != nil {
				return errors.Wrap(errors.EInternal, "failed to get working directory", err)
			}

			cr := exec.NewRealRunner()
			fsys := fs.NewRealFS()
			ctx := context.Background()

			opts := commands.CleanOpts{
				ProjectDir: projectDir,
				Publish:    publish,
			}

			return commands.Clean(ctx, cr, fsys, cwd, opts, os.Stdin, stdout, stderr)
		},
	}

	cmd.Flags().StringVar(&projectDir, "project", "", "project directory (default: current directory)")
	cmd.Flags().BoolVar(&publish, "publish", false, "also remove the publish directory (archives and logs)")

	return cmd
}
