package cmd

import (
	"fmt"
	"strings"

	"github.com/fatcatfablab/autodoh/types"
	"github.com/spf13/cobra"
)

var (
	kind string

	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Submit a report right now",
		Long: "Submits one report of the given kind, ignoring the config and " +
			"without any delay. Nobody is notified",
		Args: cobra.NoArgs,
		RunE: reportNow,
	}
)

func init() {
	f := reportCmd.Flags()
	reportFlags(f)
	f.StringVar(&kind, "kind", types.Present.String(), "One of "+kindNames())
	rootCmd.AddCommand(reportCmd)
}

func kindNames() string {
	var names []string
	for _, k := range types.Kinds() {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}

func reportNow(cmd *cobra.Command, _ []string) error {
	k, err := types.ParseReportKind(kind)
	if err != nil {
		return err
	}
	client, err := newReporter()
	if err != nil {
		return err
	}

	o, err := client.Submit(cmd.Context(), k)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report %s returned %d\n", o.Kind, o.StatusCode)
	return nil
}
