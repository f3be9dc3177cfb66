package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/derekprior/tourney/internal/config"
	"github.com/derekprior/tourney/internal/engine"
	"github.com/derekprior/tourney/internal/excel"
	"github.com/derekprior/tourney/internal/logging"
	"github.com/derekprior/tourney/internal/store/memory"
	"github.com/derekprior/tourney/internal/store/postgres"
	"github.com/derekprior/tourney/internal/tournament"
)

const defaultConfigFile = "tournament.yaml"

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	var (
		configFile string
		logLevel   string
		logFormat  string
		logger     *logging.Logger
	)

	rootCmd := &cobra.Command{
		Use:   "tourney",
		Short: "Tournament schedule drafting, validation and playoff brackets",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			switch logFormat {
			case "console":
				logger = logging.NewConsole(level)
			case "json":
				logger = logging.NewJSON(level)
			default:
				return fmt.Errorf("unknown log format %q (want console or json)", logFormat)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format: console or json")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: tournament.yaml in current directory)")

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
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Draft, validate and commit schedules",
	}

	var outputFile string
	draftCmd := &cobra.Command{
		Use:          "draft",
		Short:        "Generate a draft schedule workbook without saving anything",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context(), configFile, logger)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.runDraft(cmd.Context(), outputFile)
		},
	}
	draftCmd.Flags().StringVarP(&outputFile, "output", "o", "draft.xlsx", "Output Excel file path")

	validateCmd := &cobra.Command{
		Use:          "validate <draft.xlsx>",
		Short:        "Validate an edited draft workbook against current state",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context(), configFile, logger)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.runValidate(cmd.Context(), args[0])
		},
	}

	commitCmd := &cobra.Command{
		Use:          "commit <draft.xlsx>",
		Short:        "Re-validate a draft workbook and save its games",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context(), configFile, logger)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.runCommit(cmd.Context(), args[0])
		},
	}

	var (
		format   string
		division string
		place    bool
	)
	bracketCmd := &cobra.Command{
		Use:          "bracket",
		Short:        "Resolve a playoff bracket from standings",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context(), configFile, logger)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.runBracket(cmd.Context(), division, format, place)
		},
	}
	bracketCmd.Flags().StringVar(&format, "format", "", "Playoff format (default: playoffs.format from config)")
	bracketCmd.Flags().StringVar(&division, "division", "", "Division to seed (default: playoffs.division from config)")
	bracketCmd.Flags().BoolVar(&place, "schedule", false, "Create and place the playoff games")

	scheduleCmd.AddCommand(draftCmd, validateCmd, commitCmd)
	rootCmd.AddCommand(initCmd, scheduleCmd, bracketCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

// app is one CLI invocation's wiring: config-seeded reference data in
// memory, games in Postgres when a database URL is configured.
type app struct {
	cfg    *config.Config
	store  *memory.Store
	svc    *engine.Service
	logger *logging.Logger
	out    io.Writer
	// persistent is false when games only live in this process.
	persistent bool
	close      func() error
}

func openApp(ctx context.Context, configFlag string, logger *logging.Logger) (*app, error) {
	path, err := resolveConfigPath(configFlag)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	store := memory.New()
	store.Load(seedFromConfig(cfg))
	a := &app{cfg: cfg, store: store, logger: logger, out: os.Stdout, close: func() error { return nil }}

	var games tournament.GameRepository = store
	if dsn := cfg.DatabaseURL(); dsn != "" {
		db, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		repo := postgres.NewGameRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		games = repo
		a.persistent = true
		a.close = db.Close
		logger.Debug("using postgres game store")
	}

	a.svc = engine.NewService(engine.Repositories{
		Tournaments: store,
		Teams:       store,
		Diamonds:    store,
		Allocations: store,
		Games:       games,
		Standings:   store,
	}, logger)
	return a, nil
}

func (a *app) Close() error { return a.close() }

func (a *app) tournamentID() string { return a.cfg.Tournament.ID }

// warnNotPersisted flags writes that will be lost when the command exits.
func (a *app) warnNotPersisted() {
	if a.persistent {
		return
	}
	fmt.Fprintf(a.out, "⚠ No database configured: games are not persisted after this command exits. Set storage.database_url or %s.\n", config.DatabaseURLEnv)
	a.logger.Warn("writing to in-memory game store", "tournament_id", a.tournamentID())
}

func (a *app) workbook(ctx context.Context, games []tournament.Game, violations []tournament.Violation) (excel.Workbook, error) {
	id := a.tournamentID()
	t, _, err := a.store.GetTournament(ctx, id)
	if err != nil {
		return excel.Workbook{}, err
	}
	teams, err := a.store.ListTeams(ctx, id)
	if err != nil {
		return excel.Workbook{}, err
	}
	diamonds, err := a.store.ListDiamonds(ctx, id)
	if err != nil {
		return excel.Workbook{}, err
	}
	allocations, err := a.store.ListAllocations(ctx, id)
	if err != nil {
		return excel.Workbook{}, err
	}
	return excel.Workbook{
		Tournament:  t,
		Teams:       teams,
		Diamonds:    diamonds,
		Allocations: allocations,
		Games:       games,
		Violations:  violations,
	}, nil
}

func (a *app) runDraft(ctx context.Context, outputPath string) error {
	d, err := a.svc.GenerateDraft(ctx, a.tournamentID())
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Drafted %d games (%d placed, %d cross-pool)\n",
		len(d.Games), d.Placed(), d.Matchups.CrossPoolGames)

	fmt.Fprintln(a.out, "\nPer Team Games:")
	fmt.Fprintf(a.out, "  %-20s %6s %6s %s\n", "Team", "Games", "Extra", "Status")
	for _, o := range d.Matchups.Teams {
		fmt.Fprintf(a.out, "  %-20s %6d %6d %s\n", o.TeamID, o.Games, o.Extra, o.Status)
	}
	printViolations(a.out, d.Violations)

	wb, err := a.workbook(ctx, d.Games, d.Violations)
	if err != nil {
		return err
	}
	f, err := excel.Generate(wb)
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}

	fmt.Fprintf(a.out, "\n✓ Draft saved to %s\n", outputPath)
	if !d.Valid() {
		return fmt.Errorf("draft has %d blocking violations; edit the Games sheet and run validate", len(tournament.Errors(d.Violations)))
	}
	return nil
}

func (a *app) runValidate(ctx context.Context, path string) error {
	games, err := excel.ReadGames(path)
	if err != nil {
		return fmt.Errorf("reading draft: %w", err)
	}
	vs, err := a.svc.CheckDraft(ctx, a.tournamentID(), games)
	if err != nil {
		return err
	}
	printViolations(a.out, vs)

	// Refresh the derived sheets so they match the edited Games sheet.
	wb, err := a.workbook(ctx, games, vs)
	if err != nil {
		return err
	}
	f, err := excel.Generate(wb)
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Sheets updated in %s\n", path)

	if n := len(tournament.Errors(vs)); n > 0 {
		return fmt.Errorf("%d constraint violations found", n)
	}
	return nil
}

func (a *app) runCommit(ctx context.Context, path string) error {
	games, err := excel.ReadGames(path)
	if err != nil {
		return fmt.Errorf("reading draft: %w", err)
	}
	committed, err := a.svc.CommitDraft(ctx, a.tournamentID(), games)
	var rejection *engine.CommitRejection
	if errors.As(err, &rejection) {
		printViolations(a.out, rejection.Violations)
		return err
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Committed %d games\n", len(committed))
	a.warnNotPersisted()
	return nil
}

func (a *app) runBracket(ctx context.Context, division, format string, place bool) error {
	if division == "" {
		division = a.cfg.Playoffs.Division
	}
	if format == "" {
		format = a.cfg.Playoffs.Format
	}
	if format == "" {
		return errors.New("no playoff format: pass --format or set playoffs.format")
	}

	if !place {
		resolved, err := a.svc.ResolveBracket(ctx, a.tournamentID(), division, format)
		if err != nil {
			return err
		}
		for _, r := range resolved {
			fmt.Fprintf(a.out, "  Round %d  Game %-3d %-16s %s vs %s\n",
				r.Round, r.GameNumber, r.Name, side(r.HomeTeamID, r.Home), side(r.AwayTeamID, r.Away))
		}
		return nil
	}

	res, err := a.svc.SchedulePlayoffs(ctx, a.tournamentID(), division, format)
	if err != nil {
		return err
	}
	a.warnNotPersisted()
	for _, g := range res.Games {
		when := "unplaced"
		if g.Placed() {
			when = fmt.Sprintf("%s %s on %s", g.Date.Format("Mon 01/02"), g.Start, g.DiamondID)
		}
		fmt.Fprintf(a.out, "  Game %-3d %s vs %s: %s\n", g.Number, side(g.HomeTeamID, g.HomeSource), side(g.AwayTeamID, g.AwaySource), when)
	}
	for _, f := range res.Placement.Failed {
		fmt.Fprintf(a.out, "  ⚠ %s\n", f)
	}
	return nil
}

func side(teamID string, src tournament.Source) string {
	if teamID != "" {
		return teamID
	}
	if src != nil {
		return src.String()
	}
	return "TBD"
}

func printViolations(w io.Writer, vs []tournament.Violation) {
	errs, warnings := 0, 0
	for _, v := range vs {
		switch v.Severity {
		case tournament.SeverityError:
			errs++
			fmt.Fprintf(w, "✗ %s\n", v.Message)
		case tournament.SeverityWarning:
			warnings++
			fmt.Fprintf(w, "⚠ %s\n", v.Message)
		}
	}
	fmt.Fprintf(w, "\nValidation complete: %d errors, %d warnings\n", errs, warnings)
}
