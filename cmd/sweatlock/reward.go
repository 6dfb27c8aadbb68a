package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/sweatlock/sweatlock/internal/config"
	"github.com/sweatlock/sweatlock/internal/reward"
)

var rewardMode string

var rewardCmd = &cobra.Command{
	Use:   "reward TYPE REPS",
	Short: "Preview the unlock time a workout would earn",
	Long:  `Compute the unlock seconds a workout would earn under the configured reward curves, without starting one.`,
	Example: `  sweatlock reward pushup 20
  sweatlock reward squat 30 --mode challenge`,
	Args: cobra.ExactArgs(2),
	RunE: runReward,
}

func init() {
	rewardCmd.Flags().StringVar(&rewardMode, "mode", "standard", "Workout mode")
	rootCmd.AddCommand(rewardCmd)
}

func runReward(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	workoutType := args[0]
	reps, err := strconv.Atoi(args[1])
	if err != nil || reps <= 0 {
		return fmt.Errorf("reps must be a positive integer, got %q", args[1])
	}

	calc := reward.NewCalculator(cfg.Rewards)
	if !calc.KnownType(workoutType) {
		return fmt.Errorf("unknown workout type %q (configured: %v)", workoutType, calc.Types())
	}
	if !calc.KnownMode(rewardMode) {
		return fmt.Errorf("unknown workout mode %q", rewardMode)
	}

	earned := calc.EarnedTime(workoutType, reps, rewardMode)

	fmt.Printf("%d %s reps (%s mode) earn ", reps, workoutType, rewardMode)
	color.New(color.FgGreen, color.Bold).Printf("%s", formatSeconds(earned))
	fmt.Println(" of unlock time")
	return nil
}
