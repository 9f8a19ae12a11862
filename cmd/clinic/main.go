package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-calendar/internal/calendar"
	"github.com/hackgods/clinic-calendar/internal/client"
	"github.com/hackgods/clinic-calendar/internal/logger"
)

// app holds the settings shared by every subcommand.
type app struct {
	apiURL   string
	token    string
	tz       string
	logLevel string

	log *zap.Logger
	loc *time.Location
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, newRootCmd())
	stop()
	os.Exit(code)
}

// execute runs the command tree and prints its error, unless the calendar
// observer has already shown it.
func execute(ctx context.Context, cmd *cobra.Command) int {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var shown reportedError
	if !errors.As(err, &shown) {
		cmd.PrintErrln(cmd.ErrPrefix(), err.Error())
	}
	return 1
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "clinic",
		Short:         "Weekly appointment calendar for the clinic",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	rootCmd.SetErrPrefix("error:")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.apiURL, "api-url", envOr("CLINIC_API_URL", "http://localhost:8080"), "clinic API base URL")
	flags.StringVar(&a.token, "token", os.Getenv("CLINIC_TOKEN"), "session token from 'clinic login'")
	flags.StringVar(&a.tz, "tz", envOr("CLINIC_TZ", "Local"), "timezone for week boundaries and form dates")
	flags.StringVar(&a.logLevel, "log-level", envOr("LOG_LEVEL", "warn"), "debug, info, warn or error")

	rootCmd.AddCommand(
		signupCmd(a),
		loginCmd(a),
		logoutCmd(a),
		weekCmd(a),
		todayCmd(a),
		exportCmd(a),
		patientsCmd(a),
		appointmentsCmd(a),
		statsCmd(a),
	)

	cobra.OnFinalize(func() {
		if a.log != nil {
			_ = a.log.Sync()
		}
	})

	return rootCmd
}

func (a *app) init() error {
	loc, err := time.LoadLocation(a.tz)
	if err != nil {
		return fmt.Errorf("invalid --tz: %w", err)
	}
	a.loc = loc

	lg, err := logger.NewWithOutput("dev", a.logLevel, "stderr")
	if err != nil {
		return err
	}
	a.log = lg
	return nil
}

func (a *app) client() *client.Client {
	return client.New(a.apiURL, a.token)
}

// authedClient refuses to run without a session token.
func (a *app) authedClient() (*client.Client, error) {
	if a.token == "" {
		return nil, errors.New("not logged in: run 'clinic login' and export CLINIC_TOKEN")
	}
	return a.client(), nil
}

// view builds a calendar view over the API whose observer is r.
func (a *app) view(r *renderer) (*calendar.View, error) {
	c, err := a.authedClient()
	if err != nil {
		return nil, err
	}
	return calendar.NewView(c, r,
		calendar.WithLocation(a.loc),
		calendar.WithLogger(a.log.Named("calendar")),
	), nil
}
