package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatcatfablab/autodoh/config"
	"github.com/fatcatfablab/autodoh/httphandlers"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	// flags
	httpAddr string

	// command
	httpCmd = &cobra.Command{
		Use:   "http",
		Short: "Run the web control panel",
		Args:  cobra.NoArgs,
		RunE:  httpServe,
	}
)

func httpFlags(fs *pflag.FlagSet) {
	fs.StringVar(&httpAddr, "addr", fromEnvOr("addr", "AUTODOH_HTTP_ADDR", ":8050"), "Address to listen on")
}

func init() {
	f := httpCmd.Flags()
	httpFlags(f)
	reportFlags(f)
	rootCmd.AddCommand(httpCmd)
}

// newHttpServer only offers the manual report route when url or cookie is
// set; setting just one of them is an error.
func newHttpServer(store *config.Store) (*http.Server, error) {
	var rep httphandlers.Reporter
	if reportURL != "" || cookie != "" {
		c, err := newReporter()
		if err != nil {
			return nil, err
		}
		rep = c
	}
	return &http.Server{
		Addr:    httpAddr,
		Handler: httphandlers.NewMux(store, rep, logFile, loc),
	}, nil
}

// listen doesn't return until s is closed, or on error calling
// ListenAndServe.
func listen(s *http.Server) error {
	zap.S().Infof("Server listening on %q", s.Addr)
	err := s.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		zap.S().Info("http server closed gracefully")
		return nil
	}
	return err
}

func httpServe(cmd *cobra.Command, _ []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	s, err := newHttpServer(store)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		if err := s.Shutdown(context.Background()); err != nil {
			zap.S().Errorf("error closing http server: %s", err)
		}
	}()

	return listen(s)
}
