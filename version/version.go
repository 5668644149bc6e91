package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/fatcatfablab/autodoh/version.Version=…".
var (
	Version   string
	Commit    string
	Branch    string
	BuildTime string
	BuiltBy   string
)

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func PrintVersion(cmd *cobra.Command, _ []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n"+
		"Commit: %s\n"+
		"Branch: %s\n"+
		"Build Time: %s\n"+
		"Built By: %s\n",
		orUnknown(Version),
		orUnknown(Commit),
		orUnknown(Branch),
		orUnknown(BuildTime),
		orUnknown(BuiltBy),
	)
}
