package commands

import (
	"fmt"
	"strings"

	"github.com/aristath/allocator/internal/modules/advisor"
	"github.com/spf13/cobra"
)

func newInterpretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interpret TEXT",
		Short: "Read a risk preference and horizon from a description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := advisor.Interpret(strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), result.Reply)
			return nil
		},
	}
}
