package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wesellis/pulse-activity-tracker/internal/engine"
	"github.com/wesellis/pulse-activity-tracker/internal/httpapi"
	"github.com/wesellis/pulse-activity-tracker/internal/store"
)

func main() {
	var port int
	var dbPath string

	rootCmd := &cobra.Command{
		Use:   "pulsed",
		Short: "Pulse HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				home, _ := os.UserHomeDir()
				dbPath = filepath.Join(home, ".pulse", "pulse.db")
			}

			st, err := store.NewStore(dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer st.Close()

			viper.SetDefault("weekly_target_hours", 40.0)
			viper.SetDefault("work_hours_start", 9)
			viper.SetDefault("work_hours_end", 17)
			viper.SetDefault("max_daily_makeup", 2.0)
			viper.SetEnvPrefix("pulse")
			viper.AutomaticEnv()

			prefs := engine.Preferences{
				WorkHoursStart:    viper.GetInt("work_hours_start"),
				WorkHoursEnd:      viper.GetInt("work_hours_end"),
				MaxDailyMakeup:    viper.GetFloat64("max_daily_makeup"),
				WeeklyTargetHours: viper.GetFloat64("weekly_target_hours"),
			}

			srv := httpapi.NewServer(st, prefs)

			addr := fmt.Sprintf(":%d", port)
			log.Printf("Pulse API server starting on port %d", port)
			log.Printf("Database: %s", dbPath)
			log.Printf("Weekly target: %.1fh", prefs.WeeklyTargetHours)

			return http.ListenAndServe(addr, srv.Handler())
		},
	}

	rootCmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP port")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "Database path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
