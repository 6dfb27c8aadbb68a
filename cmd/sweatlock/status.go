package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/sweatlock/sweatlock/internal/app"
	"github.com/sweatlock/sweatlock/internal/config"
	"github.com/sweatlock/sweatlock/internal/engine"
	"github.com/sweatlock/sweatlock/internal/ledger"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the daemon's current state",
	Long:  `Query the running daemon's control API and display the access state, workout progress, unlock time, and daily usage.`,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the raw status JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	url := fmt.Sprintf("http://%s:%d/api/v1/status", cfg.Server.BindAddress, cfg.Server.APIPort)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("daemon unreachable at %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read status response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %s: %s", resp.Status, body)
	}

	if statusJSON {
		_, _ = os.Stdout.Write(body)
		fmt.Println()
		return nil
	}

	var status app.Status
	if err := json.Unmarshal(body, &status); err != nil {
		return fmt.Errorf("failed to decode status response: %w", err)
	}

	printStatus(status)
	return nil
}

func printStatus(status app.Status) {
	bold := color.New(color.Bold)

	bold.Printf("State:        ")
	stateColor(status.State).Println(status.State.String())

	switch status.State {
	case engine.StateEarning:
		if status.Workout != nil {
			fmt.Printf("Workout:      %s (%s), %d/%d reps (%.0f%%)\n",
				status.Workout.Type, status.Workout.Mode,
				status.RepsDone, status.Workout.TargetReps,
				status.WorkoutProgress*100)
			fmt.Printf("Earns:        %s on completion\n", formatSeconds(status.Workout.EarnedTimeSeconds))
		}
	case engine.StateUnlocked:
		fmt.Printf("Unlock left:  %s\n", formatSeconds(status.UnlockRemainingSeconds))
	case engine.StateExpired:
		fmt.Printf("Grace left:   %s\n", formatSeconds(status.GraceRemainingSeconds))
	}

	fmt.Printf("Plan tier:    %s\n", status.PlanTier)
	if status.DailyCapSeconds == ledger.CapUnlimited {
		fmt.Printf("Daily usage:  %s consumed (no cap)\n", formatSeconds(status.Today.ConsumedSeconds))
	} else {
		fmt.Printf("Daily usage:  %s of %s (%.0f%%)",
			formatSeconds(status.Today.ConsumedSeconds),
			formatSeconds(status.DailyCapSeconds),
			status.DailyProgress*100)
		if status.DailyCapReached {
			color.New(color.FgRed, color.Bold).Printf("  CAP REACHED")
		}
		fmt.Println()
	}
	fmt.Printf("Earned today: %s\n", formatSeconds(status.Today.EarnedSeconds))

	if len(status.Blocked) > 0 {
		bold.Println("Blocked:")
		for _, t := range status.Blocked {
			fmt.Printf("  - %s (%s)\n", t.Name, t.Identifier)
		}
	}
	if len(status.Accessible) > 0 {
		bold.Println("Accessible:")
		for _, t := range status.Accessible {
			fmt.Printf("  - %s (%s)\n", t.Name, t.Identifier)
		}
	}
}

func stateColor(state engine.State) *color.Color {
	switch state {
	case engine.StateUnlocked:
		return color.New(color.FgGreen, color.Bold)
	case engine.StateEarning:
		return color.New(color.FgYellow, color.Bold)
	case engine.StateExpired:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func formatSeconds(seconds int64) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%dh%02dm", seconds/3600, (seconds%3600)/60)
}
