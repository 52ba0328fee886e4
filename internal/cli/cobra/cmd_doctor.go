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

func newDoctorCmd() *cobra.Command {
	var projectDir string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the project and environment for packaging problems",
		Long: `Check the project and environment for packaging problems.

Reports:
  - whether a funcpack.json override is present and valid
  - whether the configured installer is on PATH, and its version
  - whether a dependency manifest exists and how many entries it has
  - whether a stale build directory is left over from an aborted run
  - whether S3 upload settings are configured

Problems that pack can work around are warnings; doctor only fails when
the project directory is missing or its configuration cannot be parsed.`,
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

			opts := commands.DoctorOpts{
				ProjectDir: projectDir,
			}

			return commands.Doctor(ctx, cr, fsys, cwd, opts, stdout, stderr)
		},
	}

	cmd.Flags().StringVar(&projectDir, "project", "", "project directory (default: current directory)")

	return cmd
}
