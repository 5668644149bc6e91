package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatcatfablab/autodoh/config"
	pb "github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// legacyLayout is how SKIP_DAYS entries were written by older setups.
const legacyLayout = "20060102"

var (
	skipFile   string
	legacyJSON string

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Import skip dates from older setups",
		Long: "Adds the dates of a legacy JSON config (SKIP_DAYS, yyyymmdd) " +
			"and/or a text file with one date per line to the config. A " +
			"missing config is created, taking ENABLED from the legacy file",
		Args: cobra.NoArgs,
		RunE: migrate,
	}
)

type legacyConfig struct {
	Enabled  *bool    `json:"ENABLED"`
	SkipDays []string `json:"SKIP_DAYS"`
}

func init() {
	f := migrateCmd.Flags()
	f.StringVar(&skipFile, "skipFile", "", "Text file with one date per line (yyyymmdd or dd/mm/yyyy)")
	f.StringVar(&legacyJSON, "legacyJson", "", "Legacy JSON config with a SKIP_DAYS list")
	migrateCmd.MarkFlagsOneRequired("skipFile", "legacyJson")
	rootCmd.AddCommand(migrateCmd)
}

func readLegacyJSON(path string) (legacyConfig, error) {
	var c legacyConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("error reading legacy config: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("error parsing legacy config %s: %w", path, err)
	}
	return c, nil
}

// readSkipLines returns the non-empty lines of r. Lines starting with # are
// comments.
func readSkipLines(r io.Reader) ([]string, error) {
	var lines []string
	s := bufio.NewScanner(r)
	for s.Scan() {
		l := strings.TrimSpace(s.Text())
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		lines = append(lines, l)
	}
	return lines, s.Err()
}

func parseLegacyDate(s string) (time.Time, error) {
	if t, err := time.Parse(legacyLayout, s); err == nil {
		return t, nil
	}
	t, err := config.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	}
	return t, nil
}

// importDates adds every date in raw to store. It stops at the first date it
// can't parse, keeping what was already added.
func importDates(store *config.Store, raw []string, bar *pb.ProgressBar) error {
	for _, r := range raw {
		day, err := parseLegacyDate(r)
		if err != nil {
			return err
		}
		if err := store.AddSkipDate(day); err != nil {
			return err
		}
		if err := bar.Add(1); err != nil {
			zap.S().Debugf("progress bar: %s", err)
		}
	}
	return bar.Finish()
}

func openOrInit(enabled bool) (*config.Store, error) {
	store, err := loadStore()
	if errors.Is(err, os.ErrNotExist) {
		zap.S().Infof("Creating %s", configPath)
		return config.Init(configPath, enabled)
	}
	return store, err
}

func migrate(cmd *cobra.Command, _ []string) error {
	var raw []string
	enabled := true

	if legacyJSON != "" {
		c, err := readLegacyJSON(legacyJSON)
		if err != nil {
			return err
		}
		if c.Enabled != nil {
			enabled = *c.Enabled
		}
		raw = append(raw, c.SkipDays...)
	}

	if skipFile != "" {
		f, err := os.Open(skipFile)
		if err != nil {
			return fmt.Errorf("error opening skip file: %w", err)
		}
		lines, err := readSkipLines(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("error reading skip file: %w", err)
		}
		raw = append(raw, lines...)
	}

	store, err := openOrInit(enabled)
	if err != nil {
		return err
	}

	before := len(store.SkipDates())
	bar := pb.NewOptions(len(raw),
		pb.OptionSetWriter(cmd.ErrOrStderr()),
		pb.OptionSetDescription("Importing skip dates"),
		pb.OptionShowCount(),
	)
	if err := importDates(store, raw, bar); err != nil {
		return err
	}

	added := len(store.SkipDates()) - before
	fmt.Fprintf(cmd.OutOrStdout(), "\nImported %d new skip dates (%d read)\n", added, len(raw))
	return nil
}
