package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/nsreg/core/namespace"
)

var inspectFormat string

var inspectCmd = &cobra.Command{
	Use:   "inspect [partition]",
	Short: "Print the namespace after running startup modules",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectFormat, "output", "o", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(inspectCmd)
}

// tree keeps partitions in their canonical order when encoded.
type tree struct {
	API     *namespace.Node `json:"api" yaml:"api"`
	Models  *namespace.Node `json:"models" yaml:"models"`
	Plugins *namespace.Node `json:"plugins" yaml:"plugins"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	parts := namespace.Partitions()
	if len(args) == 1 {
		p, err := namespace.ParsePartition(args[0])
		if err != nil {
			return err
		}
		parts = []namespace.Partition{p}
	}
	svc, err := startService(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer svc.Close()
	ns := svc.Namespace()

	out := cmd.OutOrStdout()
	switch inspectFormat {
	case "text":
		for _, p := range parts {
			if err := writeText(out, ns.Partition(p)); err != nil {
				return err
			}
		}
		return nil
	case "json", "yaml":
		var v any = tree{API: ns.Partition(namespace.API), Models: ns.Partition(namespace.Models), Plugins: ns.Partition(namespace.Plugins)}
		if len(args) == 1 {
			v = ns.Partition(parts[0])
		}
		return encode(out, inspectFormat, v)
	default:
		return fmt.Errorf("unknown output format %s", inspectFormat)
	}
}

func writeText(w io.Writer, n *namespace.Node) error {
	if _, err := fmt.Fprintln(w, n.Path()); err != nil {
		return err
	}
	return n.Walk(func(e namespace.Entry) error {
		indent := strings.Repeat("  ", e.Depth+1)
		name := e.Path[strings.LastIndex(e.Path, ".")+1:]
		if e.IsNamespace() {
			_, err := fmt.Fprintf(w, "%s%s\n", indent, name)
			return err
		}
		_, err := fmt.Fprintf(w, "%s%s: %s\n", indent, name, namespace.Describe(e.Value))
		return err
	})
}

func encode(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
