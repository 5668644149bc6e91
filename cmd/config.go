package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatcatfablab/autodoh/config"
	"github.com/spf13/cobra"
)

var errPastDate = errors.New("date has already passed")

var (
	now = time.Now

	initEnabled bool
	listAll     bool

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect or change the local config",
	}

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a new config file",
		Args:  cobra.NoArgs,
		RunE:  configInit,
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show whether reporting is on and the upcoming skip dates",
		Args:  cobra.NoArgs,
		RunE:  configStatus,
	}

	enableCmd = &cobra.Command{
		Use:   "enable",
		Short: "Turn reporting on",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, _ []string) error { return configSetEnabled(cmd, true) },
	}

	disableCmd = &cobra.Command{
		Use:   "disable",
		Short: "Turn reporting off",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, _ []string) error { return configSetEnabled(cmd, false) },
	}

	skipCmd = &cobra.Command{
		Use:     "skip <dd/mm/yyyy>",
		Short:   "Don't report on a date",
		Example: "  autodoh config skip 24/12/2026",
		Args:    cobra.ExactArgs(1),
		RunE:    configSkip,
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List skip dates from today on",
		Args:  cobra.NoArgs,
		RunE:  configList,
	}
)

func init() {
	initCmd.Flags().BoolVar(&initEnabled, "enabled", true, "Whether reporting starts enabled")
	listCmd.Flags().BoolVar(&listAll, "all", false, "Include past dates")

	configCmd.AddCommand(initCmd, statusCmd, enableCmd, disableCmd, skipCmd, listCmd)
	rootCmd.AddCommand(configCmd)
}

func today() time.Time {
	return now().In(loc)
}

func configInit(cmd *cobra.Command, _ []string) error {
	store, err := config.Init(configPath, initEnabled)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s, reporting is %s\n", store.Path(), enabledText(store.IsEnabled()))
	return nil
}

func configStatus(cmd *cobra.Command, _ []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Reporting is %s\n", enabledText(store.IsEnabled()))

	t := today()
	if store.IsSkipped(t) {
		fmt.Fprintln(out, "Today is a skip date")
	}
	upcoming := config.FilterFrom(store.SkipDays(), t)
	if len(upcoming) == 0 {
		fmt.Fprintln(out, silent("No upcoming skip dates"))
		return nil
	}
	fmt.Fprintf(out, "Next skip date: %s (%d upcoming)\n", date(config.FormatWithWeekday(upcoming[0])), len(upcoming))
	return nil
}

func configSetEnabled(cmd *cobra.Command, enabled bool) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	if err := store.SetEnabled(enabled); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reporting is %s\n", enabledText(enabled))
	return nil
}

func configSkip(cmd *cobra.Command, args []string) error {
	day, err := config.ParseDate(args[0])
	if err != nil {
		return fmt.Errorf("enter a date as dd/mm/yyyy: %w", err)
	}
	if config.IsPast(day, today()) {
		return fmt.Errorf("%w: %s", errPastDate, args[0])
	}

	store, err := loadStore()
	if err != nil {
		return err
	}
	if err := store.AddSkipDate(day); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Will skip on %s\n", date(config.FormatWithWeekday(day)))
	return nil
}

func configList(cmd *cobra.Command, _ []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	days := store.SkipDays()
	if !listAll {
		days = config.FilterFrom(days, today())
	}

	out := cmd.OutOrStdout()
	if len(days) == 0 {
		fmt.Fprintln(out, silent("No skip dates"))
		return nil
	}
	for _, d := range days {
		fmt.Fprintln(out, date(config.FormatWithWeekday(d)))
	}
	return nil
}
