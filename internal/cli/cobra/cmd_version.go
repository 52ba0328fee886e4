package cobra

import (
	"fmt"

	"github.com/spf13/cobra"

	"funcpack/internal/version"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print funcpack version",
		Long:  "Print the funcpack version string.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "funcpack %s\n", version.FullVersion())
		},
	}

	return cmd
}
