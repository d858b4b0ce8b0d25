// examctl is the operator's side door: rerun the automatic scorer
// after question surgery, dry-run the schedule rules, and seed the
// roster.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/campushq/examgate/internal/audit"
	"github.com/campushq/examgate/internal/clock"
	"github.com/campushq/examgate/internal/db"
	"github.com/campushq/examgate/internal/exam"
	"github.com/campushq/examgate/internal/roster"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "examctl",
		Short:        "Admin and repair tooling for the examgate service",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.String("db-driver", "sqlite", "Database driver (sqlite, postgres)")
	pf.String("db-dsn", "", "Database DSN (driver default when empty)")
	pf.Int("tz-offset-minutes", 180, "Fixed exam timezone, minutes east of UTC")
	pf.Int("grace-minutes", 5, "Exam window grace buffer")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text, json)")

	root.AddCommand(regradeCmd(), scheduleCheckCmd(), seedUsersCmd())
	return root
}

// viperForCmd binds a command's flags and EXAMGATE_* environment to a
// fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())
	_ = v.BindPFlags(cmd.Root().PersistentFlags())
	v.SetEnvPrefix("EXAMGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func setupLogging(v *viper.Viper) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.ToLower(v.GetString("log-format")) == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func openService(ctx context.Context, v *viper.Viper, logger *slog.Logger) (*exam.Service, func(), error) {
	driver := v.GetString("db-driver")
	dbh, err := db.Open(ctx, db.Driver(driver), v.GetString("db-dsn"))
	if err != nil {
		return nil, nil, fmt.Errorf("db open: %w", err)
	}
	store := exam.NewSQLStore(dbh, driver)
	clk := clock.NewFixed(v.GetInt("tz-offset-minutes"))
	aud := audit.NewLog(dbh, logger)
	svc := exam.NewService(store, clk, v.GetInt("grace-minutes"), logger, aud)
	return svc, func() { _ = dbh.Close() }, nil
}

func regradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regrade",
		Short: "Rerun the automatic scorer and recombine totals for every submission of an exam",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viperForCmd(cmd)
			logger := setupLogging(v)

			examID := v.GetString("exam")
			if examID == "" {
				return fmt.Errorf("--exam is required")
			}
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			svc, closeDB, err := openService(ctx, v, logger)
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := svc.Regrade(ctx, examID)
			if err != nil {
				return err
			}
			fmt.Printf("regraded %d submissions for exam %s\n", n, examID)
			return nil
		},
	}
	cmd.Flags().String("exam", "", "Exam id to regrade (required)")
	return cmd
}

func scheduleCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule-check",
		Short: "Run the cross-field schedule rules against the given dates and print every violation",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viperForCmd(cmd)
			setupLogging(v)

			clk := clock.NewFixed(v.GetInt("tz-offset-minutes"))
			vs, err := exam.ValidateSchedule(exam.ScheduleInput{
				ExamEndDate:  v.GetString("exam-end-date"),
				ExamEndTime:  v.GetString("exam-end-time"),
				DeadlineDate: v.GetString("deadline-date"),
				DeadlineTime: v.GetString("deadline-time"),
				ReleaseDate:  v.GetString("release-date"),
				ReleaseTime:  v.GetString("release-time"),
			}, clk.Now(), clk.Location())
			if err != nil {
				return err
			}
			if len(vs) == 0 {
				fmt.Println("schedule ok")
				return nil
			}
			for _, viol := range vs {
				fmt.Printf("%-8s %-22s %s\n", viol.Severity, viol.Rule, viol.Message)
			}
			if exam.HasBlocking(vs) {
				return fmt.Errorf("%d violations", len(vs))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.String("exam-end-date", "", "Exam end date (YYYY-MM-DD, required)")
	f.String("exam-end-time", "", "Exam end time (HH:MM)")
	f.String("deadline-date", "", "Grading deadline date (YYYY-MM-DD)")
	f.String("deadline-time", "", "Grading deadline time (HH:MM)")
	f.String("release-date", "", "Result release date (YYYY-MM-DD)")
	f.String("release-time", "", "Result release time (HH:MM)")
	_ = cmd.MarkFlagRequired("exam-end-date")
	return cmd
}

func seedUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-users",
		Short: "Bulk-create roster records from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viperForCmd(cmd)
			logger := setupLogging(v)

			path := v.GetString("file")
			if path == "" {
				return fmt.Errorf("--file is required")
			}
			buf, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			var users []roster.User
			if err := json.Unmarshal(buf, &users); err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			dbh, err := db.Open(ctx, db.Driver(v.GetString("db-driver")), v.GetString("db-dsn"))
			if err != nil {
				return fmt.Errorf("db open: %w", err)
			}
			defer dbh.Close()

			ins, upd, err := roster.Upsert(ctx, dbh, users)
			if err != nil {
				return err
			}
			logger.Info("roster seeded", "inserted", ins, "updated", upd)
			fmt.Printf("inserted %d, updated %d\n", ins, upd)
			return nil
		},
	}
	cmd.Flags().String("file", "", "JSON file with an array of users (required)")
	return cmd
}
