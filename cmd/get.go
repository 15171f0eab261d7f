package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/nsreg/core/namespace"
)

var getCmd = &cobra.Command{
	Use:   "get <partition.path>",
	Short: "Look up one entry, e.g. api.fns.my_fn",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	svc, err := startService(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer svc.Close()

	v, err := svc.Namespace().Get(args[0])
	if err != nil {
		return err
	}
	if n, ok := v.(*namespace.Node); ok {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: namespace [%s]\n", args[0], strings.Join(n.Keys(), ", "))
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], namespace.Describe(v))
	return err
}
