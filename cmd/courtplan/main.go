package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/derekprior/courtplan/internal/config"
	"github.com/derekprior/courtplan/internal/conflicts"
	"github.com/derekprior/courtplan/internal/excel"
	"github.com/derekprior/courtplan/internal/schedule"
	"github.com/derekprior/courtplan/internal/tournament"
)

const defaultConfigFile = "tournament.yaml"

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if env := os.Getenv("COURTPLAN_CONFIG"); env != "" {
		return env, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

func newLogger(level string) (zerolog.Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	var (
		logLevel string
		logger   zerolog.Logger
	)
	rootCmd := &cobra.Command{
		Use:   "courtplan",
		Short: "Tournament court scheduling and conflict checking",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = newLogger(logLevel)
			return err
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", os.Getenv("COURTPLAN_LOG_LEVEL"), "Log level (debug, info, warn, error)")

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter tournament.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the tournament file")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Schedule matchUps and check court grids",
	}

	var configFile string
	scheduleCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to tournament file (default: $COURTPLAN_CONFIG or tournament.yaml)")

	// withConfig resolves and loads the tournament file before running fn.
	withConfig := func(fn func(path string, cfg *config.Config) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			cfg, err := config.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger.Debug().Str("config", path).Int("matchUps", len(cfg.Tournament.MatchUps)).Msg("config loaded")
			return fn(path, cfg)
		}
	}

	var (
		orderFile   string
		profileOpts profileFlags
	)
	profileCmd := &cobra.Command{
		Use:          "profile",
		Short:        "Schedule the rounds of the scheduling profile",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: withConfig(func(path string, cfg *config.Config) error {
			return runProfile(path, cfg, orderFile, profileOpts, logger)
		}),
	}
	profileCmd.Flags().StringVarP(&orderFile, "output", "o", "order.xlsx", "Output order of play Excel file")
	profileCmd.Flags().StringSliceVar(&profileOpts.dates, "date", nil, "Only schedule these profile dates")
	profileCmd.Flags().BoolVar(&profileOpts.blockCourts, "block-courts", false, "Record a court booking for every assignment")
	profileCmd.Flags().BoolVar(&profileOpts.write, "write", false, "Write the schedule back to the tournament file")

	var (
		gridFile string
		gridDate string
		proWrite bool
	)
	proCmd := &cobra.Command{
		Use:          "pro",
		Short:        "Lay out a court grid for one date",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: withConfig(func(path string, cfg *config.Config) error {
			return runPro(path, cfg, gridDate, gridFile, proWrite, logger)
		}),
	}
	proCmd.Flags().StringVarP(&gridFile, "output", "o", "grid.xlsx", "Output grid Excel file")
	proCmd.Flags().StringVar(&gridDate, "date", "", "Grid date (default: first grid date in the tournament file)")
	proCmd.Flags().BoolVar(&proWrite, "write", false, "Write the grid back to the tournament file")

	var (
		deep       bool
		checkWrite bool
	)
	checkCmd := &cobra.Command{
		Use:          "check <grid.xlsx>",
		Short:        "Check an edited court grid for conflicts",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(func(path string, cfg *config.Config) error {
				return runCheck(cmd.Context(), path, cfg, args[0], deep, checkWrite, logger)
			})(cmd, args)
		},
	}
	checkCmd.Flags().BoolVar(&deep, "deep", false, "Also run the transitive dependency checks")
	checkCmd.Flags().BoolVar(&checkWrite, "write", false, "Write the grid placements back to the tournament file")

	var shift shiftFlags
	shiftCmd := &cobra.Command{
		Use:          "shift",
		Short:        "Move scheduled matchUps by days and minutes",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: withConfig(func(path string, cfg *config.Config) error {
			return runShift(path, cfg, shift, logger)
		}),
	}
	shiftCmd.Flags().IntVar(&shift.days, "days", 0, "Days to move by")
	shiftCmd.Flags().IntVar(&shift.minutes, "minutes", 0, "Minutes to move by")
	shiftCmd.Flags().StringSliceVar(&shift.dates, "date", nil, "Only move matchUps on these dates")
	shiftCmd.Flags().BoolVar(&shift.write, "write", false, "Write the result back to the tournament file")

	var (
		clearDates []string
		clearWrite bool
	)
	clearCmd := &cobra.Command{
		Use:          "clear",
		Short:        "Remove schedules from matchUps that are not completed",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: withConfig(func(path string, cfg *config.Config) error {
			return runClear(path, cfg, clearDates, clearWrite, logger)
		}),
	}
	clearCmd.Flags().StringSliceVar(&clearDates, "date", nil, "Only clear these dates")
	clearCmd.Flags().BoolVar(&clearWrite, "write", false, "Write the result back to the tournament file")

	scheduleCmd.AddCommand(profileCmd, proCmd, checkCmd, shiftCmd, clearCmd)
	rootCmd.AddCommand(initCmd, scheduleCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	cfg, err := starterConfig()
	if err != nil {
		return fmt.Errorf("building starter tournament: %w", err)
	}
	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(outputPath, append([]byte(starterHeader), data...), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s (%d matchUps, %d venues)\n", outputPath, len(cfg.Tournament.MatchUps), len(cfg.Tournament.Venues))
	return nil
}

type profileFlags struct {
	dates       []string
	blockCourts bool
	write       bool
}

func runProfile(configPath string, cfg *config.Config, outputPath string, flags profileFlags, logger zerolog.Logger) error {
	if len(cfg.Profile) == 0 {
		return fmt.Errorf("%s has no profile", configPath)
	}

	result, err := schedule.ScheduleProfileRounds(&cfg.Tournament, cfg.Profile, schedule.ProfileOptions{
		Policies:      cfg.Policies,
		ScheduleDates: flags.dates,
		BlockCourts:   flags.blockCourts,
		Participants:  cfg.Resolver(),
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Scheduled %d profile dates in %d passes\n", len(result.Dates), result.Iterations)
	fmt.Printf("  %-12s %9s %8s %10s\n", "Date", "Scheduled", "No time", "Over limit")
	notScheduled := 0
	for _, d := range result.Dates {
		fmt.Printf("  %-12s %9d %8d %10d\n", d.ScheduleDate,
			len(d.ScheduledMatchUpIDs), len(d.NoTimeMatchUpIDs), len(d.OverLimitMatchUpIDs))
		notScheduled += len(d.NoTimeMatchUpIDs) + len(d.OverLimitMatchUpIDs)
	}
	if notScheduled > 0 {
		fmt.Fprintf(os.Stderr, "⚠ %d matchUps could not be given a time\n", notScheduled)
	} else {
		fmt.Printf("✓ All requested matchUps scheduled\n")
	}

	cfg.Tournament.MatchUps = tournament.ApplyDeltas(cfg.Tournament.MatchUps, result.Modified)
	cfg.Tournament.Venues = schedule.ApplyBookings(cfg.Tournament.Venues, result.Bookings)

	issues, err := schedule.CheckChronology(cfg.Tournament.MatchUps, cfg.Policies, cfg.Resolver())
	if err != nil {
		return fmt.Errorf("checking chronology: %w", err)
	}
	if len(issues) > 0 {
		fmt.Printf("\nRecovery violations (%d):\n", len(issues))
		for _, i := range issues {
			fmt.Printf("  ⚠ %s on %s: %s starts before %s (after %s)\n",
				i.ParticipantID, i.ScheduledDate, i.MatchUpID, i.Earliest, i.PriorMatchUpID)
		}
	} else {
		fmt.Println("\n✓ No recovery violations")
	}

	f, err := excel.GenerateOrderOfPlay(&cfg.Tournament)
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	fmt.Printf("\n✓ Order of play saved to %s\n", outputPath)

	return writeBack(configPath, cfg, flags.write, len(result.Modified))
}

func runPro(configPath string, cfg *config.Config, date, outputPath string, write bool, logger zerolog.Logger) error {
	if date == "" {
		if len(cfg.Grid.Dates) == 0 {
			return fmt.Errorf("no grid date: pass --date or list grid.dates in %s", configPath)
		}
		date = cfg.Grid.Dates[0].String()
	}

	result, err := schedule.ProAutoSchedule(&cfg.Tournament, schedule.ProOptions{
		ScheduledDate:    date,
		VenueIDs:         cfg.Grid.Venues,
		MinCourtGridRows: cfg.Policies.MinCourtGridRows,
		Participants:     cfg.Resolver(),
		Logger:           logger,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Placed %d matchUps on %d courts x %d rows for %s\n",
		len(result.ScheduledMatchUpIDs), len(result.CourtIDs), result.RowCount, date)
	if n := len(result.NotScheduledMatchUpIDs); n > 0 {
		fmt.Fprintf(os.Stderr, "⚠ %d matchUps did not fit the grid\n", n)
	}

	cfg.Tournament.MatchUps = tournament.ApplyDeltas(cfg.Tournament.MatchUps, result.Modified)
	issues, err := conflicts.ProConflicts(cfg.Tournament.MatchUps, conflicts.Options{
		Links:         cfg.Tournament.Links,
		Participants:  cfg.Resolver(),
		ScheduledDate: date,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("checking grid: %w", err)
	}
	printIssueSummary(date, issues)

	f, err := excel.GenerateGrid(&cfg.Tournament, excel.Grid{
		Date:   tournament.ExtractDate(date),
		Courts: result.CourtIDs,
		Rows:   result.RowCount,
	}, issues)
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	fmt.Printf("\n✓ Grid saved to %s\n", outputPath)

	return writeBack(configPath, cfg, write, len(result.Modified))
}

func runCheck(ctx context.Context, configPath string, cfg *config.Config, gridPath string, deep, write bool, logger zerolog.Logger) error {
	g, placements, err := excel.ReadGridFile(gridPath)
	if err != nil {
		return fmt.Errorf("reading grid: %w", err)
	}
	deltas, err := excel.Deltas(&cfg.Tournament, g, placements)
	if err != nil {
		return fmt.Errorf("reading grid: %w", err)
	}
	fmt.Printf("Read %d placements for %s (%d changed)\n", len(placements), g.Date, len(deltas))
	cfg.Tournament.MatchUps = tournament.ApplyDeltas(cfg.Tournament.MatchUps, deltas)

	results, err := conflicts.AnalyzeByDate(ctx, cfg.Tournament.MatchUps, conflicts.Options{
		UseDeepDependencies: deep,
		Links:               cfg.Tournament.Links,
		Participants:        cfg.Resolver(),
		Logger:              logger,
	})
	if err != nil {
		return fmt.Errorf("checking grid: %w", err)
	}

	current := results[g.Date]
	if current == nil {
		current = &conflicts.Result{Success: true}
	}
	for _, issue := range current.Issues() {
		mark := "⚠"
		if issue.Issue == conflicts.DoubleBooking || issue.Issue == conflicts.ScheduleError {
			mark = "✗"
		}
		fmt.Printf("%s row %d %s: %s %s (%s)\n", mark, issue.Row, issue.CourtID,
			label(&cfg.Tournament, issue.MatchUpID), issue.IssueType, strings.Join(issue.IssueIDs, ", "))
	}
	printIssueSummary(g.Date, current)

	// Other grid dates are checked too, since the sheet can feed them.
	var others []string
	for date := range results {
		if date != g.Date {
			others = append(others, date)
		}
	}
	slices.Sort(others)
	for _, date := range others {
		printIssueSummary(date, results[date])
	}

	f, err := excelize.OpenFile(gridPath)
	if err != nil {
		return fmt.Errorf("opening grid: %w", err)
	}
	defer f.Close()
	if err := excel.WriteIssues(f, &cfg.Tournament, current); err != nil {
		return err
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	fmt.Printf("✓ Issues sheet updated in %s\n", gridPath)

	if err := writeBack(configPath, cfg, write, len(deltas)); err != nil {
		return err
	}

	blocking := 0
	for _, r := range results {
		if r.Blocking() {
			blocking += r.Count(conflicts.DoubleBooking) + r.Count(conflicts.ScheduleError)
		}
	}
	if blocking > 0 {
		return fmt.Errorf("%d blocking grid issues found", blocking)
	}
	return nil
}

type shiftFlags struct {
	days    int
	minutes int
	dates   []string
	write   bool
}

func runShift(configPath string, cfg *config.Config, flags shiftFlags, logger zerolog.Logger) error {
	if flags.days == 0 && flags.minutes == 0 {
		return fmt.Errorf("nothing to do: pass --days and/or --minutes")
	}

	var ids []string
	for _, m := range cfg.Tournament.MatchUps {
		if !m.Schedule.IsScheduled() {
			continue
		}
		if len(flags.dates) > 0 && !slices.Contains(flags.dates, m.Schedule.ScheduledDate) {
			continue
		}
		ids = append(ids, m.MatchUpID)
	}
	if len(ids) == 0 {
		fmt.Println("No scheduled matchUps to move")
		return nil
	}

	result, err := schedule.BulkRescheduleMatchUps(&cfg.Tournament, ids, schedule.Shift{
		DaysChange:    flags.days,
		MinutesChange: flags.minutes,
	}, schedule.BulkOptions{Logger: logger})
	if err != nil {
		return err
	}
	fmt.Printf("✓ Moved %d matchUps\n", len(result.RescheduledMatchUpIDs))
	if n := len(result.NotRescheduled); n > 0 {
		fmt.Fprintf(os.Stderr, "⚠ %d matchUps left in place: %s\n", n, strings.Join(result.NotRescheduled, ", "))
	}

	cfg.Tournament.MatchUps = tournament.ApplyDeltas(cfg.Tournament.MatchUps, result.Modified)
	return writeBack(configPath, cfg, flags.write, len(result.Modified))
}

func runClear(configPath string, cfg *config.Config, dates []string, write bool, logger zerolog.Logger) error {
	result, err := schedule.ClearScheduledMatchUps(&cfg.Tournament, schedule.ClearOptions{
		ScheduledDates: dates,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	fmt.Printf("✓ Cleared %d schedules\n", len(result.ClearedMatchUpIDs))

	cfg.Tournament.MatchUps = tournament.ApplyDeltas(cfg.Tournament.MatchUps, result.Modified)
	return writeBack(configPath, cfg, write, len(result.Modified))
}

func writeBack(configPath string, cfg *config.Config, write bool, changed int) error {
	if !write {
		if changed > 0 {
			fmt.Printf("  %d schedule changes not saved; pass --write to update %s\n", changed, configPath)
		}
		return nil
	}
	if err := cfg.WriteFile(configPath); err != nil {
		return err
	}
	fmt.Printf("✓ %d schedule changes written to %s\n", changed, configPath)
	return nil
}

func printIssueSummary(date string, r *conflicts.Result) {
	if len(r.RowIssues) == 0 {
		fmt.Printf("✓ %s: no grid issues\n", date)
		return
	}
	fmt.Printf("%s: %d double bookings, %d errors, %d conflicts, %d warnings\n", date,
		r.Count(conflicts.DoubleBooking), r.Count(conflicts.ScheduleError),
		r.Count(conflicts.Conflict), r.Count(conflicts.ScheduleWarning))
}

func label(t *tournament.Tournament, matchUpID string) string {
	if m, err := t.MatchUp(matchUpID); err == nil {
		return m.Label()
	}
	return matchUpID
}
