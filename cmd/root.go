package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatcatfablab/autodoh/config"
	"github.com/fatcatfablab/autodoh/logging"
	"github.com/fatcatfablab/autodoh/settings"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	configPath   string
	settingsPath string
	logFile      string
	tz           string

	loc      = time.Local
	flushLog = func() {}

	rootCmd = &cobra.Command{
		Use:   "autodoh",
		Short: "autodoh files the daily attendance report",
		Long: "autodoh submits the daily attendance report to the remote endpoint.\n" +
			"A local JSON config decides whether to report at all and on which " +
			"dates not to, and can be edited from the command line, a small web " +
			"panel or a Slack bot",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(_ *cobra.Command, _ []string) { flushLog() },
	}
)

// envs maps a flag name to the environment variable its default comes from.
var envs = map[string]string{}

func fromEnv(flag, env string) string {
	envs[flag] = env
	return os.Getenv(env)
}

func fromEnvOr(flag, env, def string) string {
	if v := fromEnv(flag, env); v != "" {
		return v
	}
	return def
}

// fromEnvBool treats any set value that isn't a recognised false as true.
func fromEnvBool(flag, env string) bool {
	v := fromEnv(flag, env)
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v != ""
}

func envOf(flag string) string {
	return envs[flag]
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", fromEnvOr("config", "AUTODOH_CONFIG", "config.json"), "Path to the JSON config")
	pf.StringVar(&settingsPath, "settings", fromEnv("settings", "AUTODOH_SETTINGS"), "Optional YAML file with flag values")
	pf.StringVar(&logFile, "logFile", fromEnv("logFile", "AUTODOH_LOG_FILE"), "Also log to this file")
	pf.StringVar(&tz, "timezone", fromEnvOr("timezone", "AUTODOH_TZ", "Local"), "Time zone")
}

// allFlags lists the flags of every command, so a settings file shared
// between commands doesn't trip over another command's keys.
func allFlags(c *cobra.Command) []*pflag.FlagSet {
	sets := []*pflag.FlagSet{c.Flags(), c.PersistentFlags()}
	for _, sub := range c.Commands() {
		sets = append(sets, allFlags(sub)...)
	}
	return sets
}

func setup(cmd *cobra.Command, _ []string) error {
	s, err := settings.Load(settingsPath)
	if err != nil {
		return err
	}
	if err := s.Apply(cmd.Flags(), envOf, allFlags(cmd.Root())...); err != nil {
		return err
	}

	flushLog = logging.Setup(logFile)

	l, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("bad time zone %q: %w", tz, err)
	}
	loc = l
	return nil
}

func loadStore() (*config.Store, error) {
	return config.Load(configPath)
}

func Execute() {
	// stderr only, until setup knows about --logFile
	flushLog = logging.Setup("")
	if err := rootCmd.Execute(); err != nil {
		zap.S().Error(err)
		flushLog()
		os.Exit(1)
	}
}
