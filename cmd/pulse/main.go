package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wesellis/pulse-activity-tracker/internal/engine"
	"github.com/wesellis/pulse-activity-tracker/internal/store"
)

var (
	cfgFile string
	dbPath  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pulse",
		Short: "Pulse - Track productivity and schedule work around your energy",
		Long: `Pulse analyzes your productivity history to learn your daily energy
rhythm, tracks how far you are ahead of or behind your weekly target,
and schedules pending work into the time windows where it fits best.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pulse/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default is $HOME/.pulse/pulse.db)")

	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(activityCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(debtCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(planCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".pulse")
		os.MkdirAll(configDir, 0755)

		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("weekly_target_hours", 40.0)
	viper.SetDefault("work_hours_start", 9)
	viper.SetDefault("work_hours_end", 17)
	viper.SetDefault("max_daily_makeup", 2.0)

	viper.AutomaticEnv()
	viper.ReadInConfig()

	if dbPath == "" {
		home, _ := os.UserHomeDir()
		dbPath = filepath.Join(home, ".pulse", "pulse.db")
	}
}

func loadPreferences() engine.Preferences {
	return engine.Preferences{
		WorkHoursStart:    viper.GetInt("work_hours_start"),
		WorkHoursEnd:      viper.GetInt("work_hours_end"),
		MaxDailyMakeup:    viper.GetFloat64("max_daily_makeup"),
		WeeklyTargetHours: viper.GetFloat64("weekly_target_hours"),
	}
}

func openStore() (*store.Store, error) {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return st, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize Pulse with a local database",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			fmt.Println("✓ Initialized Pulse")
			fmt.Printf("Database: %s\n", dbPath)
			fmt.Println("\nNext steps:")
			fmt.Println("  1. Record activity: pulse activity add")
			fmt.Println("  2. Add tasks: pulse task add")
			fmt.Println("  3. Generate a plan: pulse plan")

			return nil
		},
	}
}

func activityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Manage activity samples",
	}

	cmd.AddCommand(activityAddCmd())
	cmd.AddCommand(activityListCmd())
	cmd.AddCommand(activityImportCmd())

	return cmd
}

func activityAddCmd() *cobra.Command {
	var productivity, focus float64
	var minutes int
	var when string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record one activity sample",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ts := time.Now()
			if when != "" {
				ts, err = time.Parse(time.RFC3339, when)
				if err != nil {
					return fmt.Errorf("invalid time format (use RFC3339): %w", err)
				}
			}

			sample := engine.ActivitySample{
				Timestamp:         ts,
				ProductivityScore: productivity,
				FocusScore:        focus,
				DurationSeconds:   float64(minutes) * 60,
			}
			if err := st.SaveSample(sample); err != nil {
				return err
			}

			fmt.Printf("✓ Recorded %d productive minutes at %s\n", minutes, ts.Format("15:04"))
			return nil
		},
	}

	cmd.Flags().Float64VarP(&productivity, "productivity", "p", 50, "Productivity score (0-100)")
	cmd.Flags().Float64VarP(&focus, "focus", "f", 50, "Focus score (0-100)")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 30, "Duration in minutes")
	cmd.Flags().StringVarP(&when, "time", "t", "", "Sample time (RFC3339, default now)")

	return cmd
}

func activityListCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent activity samples",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			samples, err := st.ListSamplesSince(time.Now().AddDate(0, 0, -days))
			if err != nil {
				return err
			}

			if len(samples) == 0 {
				fmt.Println("No activity recorded")
				return nil
			}

			fmt.Printf("%-20s %12s %8s %10s\n", "TIME", "PRODUCTIVITY", "FOCUS", "DURATION")
			fmt.Println("-------------------------------------------------------")
			for _, s := range samples {
				fmt.Printf("%-20s %12.0f %8.0f %9.0fm\n",
					s.Timestamp.Format("2006-01-02 15:04"), s.ProductivityScore,
					s.FocusScore, s.DurationSeconds/60)
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", engine.DefaultLookbackDays, "Lookback window in days")

	return cmd
}

func activityImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import activity samples from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var samples []engine.ActivitySample
			if err := json.Unmarshal(data, &samples); err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			imported := 0
			for _, s := range samples {
				if err := st.SaveSample(s); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: skipping sample: %v\n", err)
					continue
				}
				imported++
			}

			fmt.Printf("✓ Imported %d of %d samples\n", imported, len(samples))
			return nil
		},
	}
}

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	cmd.AddCommand(taskAddCmd())
	cmd.AddCommand(taskListCmd())
	cmd.AddCommand(taskDeleteCmd())

	return cmd
}

func taskAddCmd() *cobra.Command {
	var title, priority, energy, context, deadline string
	var hours, flexibility float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new task",
		RunE: func(cmd *cobra.Command, args []string) error {
			prio, err := engine.ParsePriority(priority)
			if err != nil {
				return err
			}
			level, err := engine.ParseEnergyLevel(energy)
			if err != nil {
				return err
			}

			task := engine.CompensationTask{
				ID:                     fmt.Sprintf("%s-%d", title, time.Now().Unix()),
				Title:                  title,
				EstimatedDurationHours: hours,
				Priority:               prio,
				RequiredEnergy:         level,
				Context:                context,
				Flexibility:            flexibility,
			}

			if deadline != "" {
				dt, err := time.Parse(time.RFC3339, deadline)
				if err != nil {
					return fmt.Errorf("invalid deadline (use RFC3339): %w", err)
				}
				task.Deadline = &dt
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.SaveTask(task); err != nil {
				return err
			}

			fmt.Printf("✓ Added task: %s\n", title)
			fmt.Printf("  ID: %s\n", task.ID)
			fmt.Printf("  Duration: %.1fh, priority %s, needs %s energy\n", hours, prio, level)

			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "n", "", "Task title (required)")
	cmd.Flags().Float64Var(&hours, "hours", 1, "Estimated duration in hours")
	cmd.Flags().StringVar(&priority, "priority", "medium", "Priority (low|medium|high|urgent)")
	cmd.Flags().StringVar(&energy, "energy", "medium", "Required energy (low|medium|high|peak)")
	cmd.Flags().StringVar(&context, "context", "work", "Context (work|personal|health|admin)")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline (RFC3339, optional)")
	cmd.Flags().Float64Var(&flexibility, "flexibility", 0.5, "Timing flexibility (0-1)")

	cmd.MarkFlagRequired("title")

	return cmd
}

func taskListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			tasks, err := st.ListTasks()
			if err != nil {
				return err
			}

			if len(tasks) == 0 {
				fmt.Println("No tasks")
				return nil
			}

			fmt.Printf("%-30s %-8s %-8s %6s %-16s\n", "TITLE", "PRIORITY", "ENERGY", "HOURS", "DEADLINE")
			fmt.Println("----------------------------------------------------------------------")
			for _, t := range tasks {
				deadline := "-"
				if t.Deadline != nil {
					deadline = t.Deadline.Format("2006-01-02 15:04")
				}
				fmt.Printf("%-30s %-8s %-8s %6.1f %-16s\n",
					t.Title, t.Priority, t.RequiredEnergy, t.EstimatedDurationHours, deadline)
			}

			return nil
		},
	}
}

func taskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteTask(args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Deleted task %s\n", args[0])
			return nil
		},
	}
}

func analyzeCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze energy patterns from recorded activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			samples, err := st.ListSamplesSince(time.Now().AddDate(0, 0, -days))
			if err != nil {
				return err
			}

			var analyzer engine.EnergyProfileAnalyzer
			return printJSON(analyzer.AnalyzeEnergyPatterns(samples))
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", engine.DefaultLookbackDays, "Lookback window in days")

	return cmd
}

func debtCmd() *cobra.Command {
	var days, ahead int
	var strategy string

	cmd := &cobra.Command{
		Use:   "debt",
		Short: "Calculate time debt against the weekly target",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			samples, err := st.ListSamplesSince(time.Now().AddDate(0, 0, -days))
			if err != nil {
				return err
			}

			calc := engine.TimeDebtCalculator{WeeklyTargetHours: viper.GetFloat64("weekly_target_hours")}
			debt := calc.CalculateCurrentDebt(time.Now(), samples, days)

			out := map[string]interface{}{"debt": debt}
			if ahead > 0 {
				out["projections"] = calc.ProjectFutureDebt(debt, ahead)
			}
			if strategy != "" {
				out["makeup_schedule"] = calc.CalculateMakeupSchedule(debt, engine.MakeupStrategy(strategy))
			}
			return printJSON(out)
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", engine.DefaultLookbackDays, "Lookback window in days")
	cmd.Flags().IntVar(&ahead, "ahead", 0, "Project debt this many days ahead")
	cmd.Flags().StringVar(&strategy, "strategy", "", "Makeup strategy (immediate|distributed|delayed)")

	return cmd
}

func statsCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize productivity by hour of day",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			samples, err := st.ListSamplesSince(time.Now().AddDate(0, 0, -days))
			if err != nil {
				return err
			}

			return printJSON(engine.SummarizeProductivity(samples))
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 30, "Lookback window in days")

	return cmd
}

func planCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a compensation plan for the coming week",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			samples, err := st.ListSamplesSince(time.Now().AddDate(0, 0, -days))
			if err != nil {
				return err
			}
			tasks, err := st.ListTasks()
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "Planning with %d samples and %d tasks\n", len(samples), len(tasks))

			e := engine.NewCompensationEngine(loadPreferences(), nil)
			return printJSON(e.AnalyzeAndCompensate(time.Now(), samples, tasks))
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", engine.DefaultLookbackDays, "Lookback window in days")

	return cmd
}
