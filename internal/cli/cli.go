// Package cli implements hosctl, the operator tool for the HOS service.
//
//	hosctl
//	├── migrate                 create tables and indexes
//	├── seed    --file          load drivers and duty entries from JSON
//	├── check   --cycle --drive --duty [--continuous] [--proposed]
//	├── replay  --file [--driver] [--now]
//	└── token   --role [--driver] [--ttl]
//
// check and replay run the evaluator locally and need no database.
package cli

import (
	"context"
	"database/sql"
	"eld-hos-service/internal/adapters/repositories"
	"eld-hos-service/internal/api/dto"
	"eld-hos-service/internal/auth"
	"eld-hos-service/internal/config"
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/platform/db"
	"eld-hos-service/internal/services"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/zoobzio/clockz"
)

var (
	rulesFile string
	ruleSet   string
)

func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "hosctl",
		Short:   "Hours-of-Service compliance tooling",
		Version: "0.1.0",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadDotEnv()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules-file", "", "YAML rule-set file (default $HOS_RULES_PATH)")
	rootCmd.PersistentFlags().StringVar(&ruleSet, "rule-set", "", "rule set name, e.g. 70_8 or 60_7 (default $HOS_CYCLE)")

	rootCmd.AddCommand(
		buildMigrateCommand(),
		buildSeedCommand(),
		buildCheckCommand(),
		buildReplayCommand(),
		buildTokenCommand(),
	)

	return rootCmd
}

func activeRules() (domain.RuleSet, error) {
	path := rulesFile
	if path == "" {
		path = config.Get("HOS_RULES_PATH", "")
	}
	name := ruleSet
	if name == "" {
		name = config.Get("HOS_CYCLE", "")
	}
	return config.LoadRuleSet(path, name)
}

func openDatabase(ctx context.Context) (*sql.DB, error) {
	url := config.Get("DATABASE_URL", "")
	if url == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return db.Open(ctx, url, db.DefaultPoolConfig())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func buildMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			log.Println("Initializing database schema...")
			if err := repositories.InitSchema(conn); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			log.Println("Schema ready.")
			return nil
		},
	}
}

func buildSeedCommand() *cobra.Command {
	var seedFile string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load drivers and duty entries from a JSON seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seedFile == "" {
				seedFile = config.Get("SEED_PATH", "data/seeds/drivers.json")
			}

			conn, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := repositories.InitSchema(conn); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			log.Println("Seeding database...")
			if err := repositories.SeedFromJSON(conn, seedFile); err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			log.Println("Seeding complete.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&seedFile, "file", "f", "", "seed JSON file (default $SEED_PATH)")
	return cmd
}

func buildCheckCommand() *cobra.Command {
	var (
		cycle, drive, duty   float64
		continuous, proposed float64
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate reported HOS counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := activeRules()
			if err != nil {
				return err
			}

			in := services.EvaluateInput{
				Counters: domain.HOSCounters{
					CycleHoursUsed:       cycle,
					DailyDriveHours:      drive,
					DailyDutyHours:       duty,
					ContinuousDriveHours: continuous,
				},
				At: clockz.RealClock.Now().UTC(),
			}
			if cmd.Flags().Changed("proposed") {
				in.ProposedDriveHours = &proposed
			}

			res, err := services.Evaluate(in, rules)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dto.FromCompliance(res))
		},
	}

	cmd.Flags().Float64Var(&cycle, "cycle", 0, "cycle hours used")
	cmd.Flags().Float64Var(&drive, "drive", 0, "daily drive hours")
	cmd.Flags().Float64Var(&duty, "duty", 0, "daily on-duty window hours")
	cmd.Flags().Float64Var(&continuous, "continuous", 0, "drive hours since the last 30-minute break")
	cmd.Flags().Float64Var(&proposed, "proposed", 0, "proposed additional drive hours")
	_ = cmd.MarkFlagRequired("cycle")
	_ = cmd.MarkFlagRequired("drive")
	_ = cmd.MarkFlagRequired("duty")
	return cmd
}

type replayOutput struct {
	DriverID       int                     `json:"driver_id"`
	AsOf           time.Time               `json:"as_of"`
	Entries        int                     `json:"entries"`
	CycleHours     float64                 `json:"cycle_hours_used"`
	DailyDrive     float64                 `json:"daily_drive_hours"`
	DailyDuty      float64                 `json:"daily_duty_hours"`
	Continuous     float64                 `json:"continuous_drive_hours"`
	BreakSatisfied bool                    `json:"break_satisfied"`
	Compliance     dto.ComplianceResponse  `json:"compliance"`
	Violations     []dto.ViolationResponse `json:"violations"`
}

func buildReplayCommand() *cobra.Command {
	var (
		file     string
		driverID int
		nowFlag  string
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a duty-entry history and report counters and violations",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := repositories.LoadSeed(file)
			if err != nil {
				return err
			}

			if driverID == 0 && len(seed.Drivers) == 1 {
				driverID = seed.Drivers[0].DriverID
			}

			now := clockz.RealClock.Now().UTC()
			if nowFlag != "" {
				now, err = time.Parse(time.RFC3339, nowFlag)
				if err != nil {
					return fmt.Errorf("--now must be RFC3339: %w", err)
				}
			}

			rules, err := activeRules()
			if err != nil {
				return err
			}

			entries := seed.Entries(driverID)
			sort.SliceStable(entries, func(i, j int) bool { return entries[i].Start.Before(entries[j].Start) })

			state, err := services.Replay(entries, now, rules)
			if err != nil {
				return err
			}
			res, err := services.EvaluateReplayed(services.EvaluateInput{Counters: state.Counters, At: now}, rules)
			if err != nil {
				return err
			}
			vs, err := services.DetectViolations(entries, now, rules)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), replayOutput{
				DriverID:       driverID,
				AsOf:           now,
				Entries:        len(entries),
				CycleHours:     state.Counters.CycleHoursUsed,
				DailyDrive:     state.Counters.DailyDriveHours,
				DailyDuty:      state.Counters.DailyDutyHours,
				Continuous:     state.Counters.ContinuousDriveHours,
				BreakSatisfied: state.BreakSatisfied,
				Compliance:     dto.FromCompliance(res),
				Violations:     dto.FromViolations(vs),
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "seed JSON file with duty_entries")
	cmd.Flags().IntVar(&driverID, "driver", 0, "driver id (default: the only driver in the file)")
	cmd.Flags().StringVar(&nowFlag, "now", "", "replay instant, RFC3339 (default: current time)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func buildTokenCommand() *cobra.Command {
	var (
		role     string
		driverID int
		subject  string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token with $AUTH_JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := config.Get("AUTH_JWT_SECRET", "")
			if secret == "" {
				return errors.New("AUTH_JWT_SECRET is required")
			}
			r, ok := auth.NormalizeRole(role)
			if !ok {
				return fmt.Errorf("unknown role %q", role)
			}
			if subject == "" {
				subject = fmt.Sprintf("%s-%d", r, driverID)
			}

			token, err := auth.Sign([]byte(secret), r, driverID, subject, clockz.RealClock.Now(), ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&role, "role", string(auth.RoleDispatcher), "driver, dispatcher or admin")
	cmd.Flags().IntVar(&driverID, "driver", 0, "driver id (required for the driver role)")
	cmd.Flags().StringVar(&subject, "subject", "", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
