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

func newPackCmd() *cobra.Command {
	var projectDir string
	var upload bool

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Build a deployable archive from the current project",
		Long: `Build a deployable archive from a function project.
Runs the full packaging flow and leaves the archive and its build log in
the project's publish directory.

Behavior:
  - installs dependencies from requirements.txt into an isolated build dir
  - copies project sources through the exclusion filter
  - trims tests, metadata and non-essential service data from libraries
  - writes <project>_<timestamp>.zip plus a matching .log under publish/
  - removes the build directory whether the run succeeds or fails

Configuration:
  an optional funcpack.json in the project root overrides the built-in
  exclusion patterns, size thresholds and installer settings.

  with --upload:
  - reads FUNCPACK_S3_* settings from the environment or a .env file
  - uploads the archive unless the stored copy already matches`,
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

			opts := commands.PackOpts{
				ProjectDir: projectDir,
				Upload:     upload,
			}

			return commands.Pack(ctx, cr, fsys, cwd, opts, stdout, stderr)
		},
	}

	cmd.Flags().StringVar(&projectDir, "project", "", "project directory (default: current directory)")
	cmd.Flags().BoolVar(&upload, "upload", false, "upload the archive to the configured S3 endpoint")

	return cmd
}
