package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/sweatlock/sweatlock/internal/config"
	"github.com/sweatlock/sweatlock/internal/ledger"
	"github.com/sweatlock/sweatlock/internal/reward"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long:  `Validate the SweatLock configuration file for syntax and semantic errors.`,
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration validation failed: %v\n", err)
		return err
	}

	fmt.Printf("✅ Configuration is valid: %s\n\n", configPath)

	bold := color.New(color.Bold)

	tier := ledger.Tier(cfg.Plan.Tier)
	bold.Println("Plan")
	if capSeconds := tier.DailyCapSeconds(); capSeconds == ledger.CapUnlimited {
		fmt.Printf("  tier %s, no daily cap\n", cfg.Plan.Tier)
	} else {
		fmt.Printf("  tier %s, daily cap %s\n", cfg.Plan.Tier, formatSeconds(capSeconds))
	}

	bold.Println("Engine")
	fmt.Printf("  grace period %s, tick interval %s\n",
		cfg.Engine.GracePeriod, cfg.Engine.TickInterval)

	calc := reward.NewCalculator(cfg.Rewards)
	bold.Println("Reward curves")
	for _, name := range calc.Types() {
		curve := cfg.Rewards.Exercises[name]
		fmt.Printf("  %-10s base %ds + %ds/rep", name, curve.BaseSeconds, curve.SecondsPerRep)
		if curve.MaxSeconds > 0 {
			fmt.Printf(", cap %s", formatSeconds(curve.MaxSeconds))
		}
		fmt.Println()
	}

	bold.Println("Targets")
	if len(cfg.Targets) == 0 {
		color.New(color.FgYellow).Println("  (none configured — nothing will be blocked)")
	}
	for _, t := range cfg.Targets {
		fmt.Printf("  %s (%s)\n", t.Name, t.Identifier)
	}

	bold.Println("Storage")
	fmt.Printf("  %s", cfg.Storage.Type)
	if cfg.Storage.Type == "bolt" {
		fmt.Printf(" at %s", cfg.Storage.Path)
	} else {
		fmt.Printf(" at %s:%d", cfg.Storage.Redis.Host, cfg.Storage.Redis.Port)
	}
	fmt.Printf(", %d day retention\n", cfg.Storage.RetentionDays)

	bold.Println("Enforcement")
	fmt.Printf("  mode %s", cfg.Enforce.Mode)
	if cfg.Enforce.Mode == "exec" {
		fmt.Printf(", command %s", cfg.Enforce.Command)
	}
	fmt.Println()

	return nil
}
