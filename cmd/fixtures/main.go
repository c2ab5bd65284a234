package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cueleague/snooker-scores/internal/app"
	"github.com/cueleague/snooker-scores/internal/config"
	"github.com/cueleague/snooker-scores/internal/domain/snooker"
	idgen "github.com/cueleague/snooker-scores/internal/platform/id"
	"github.com/cueleague/snooker-scores/internal/usecase"
)

const commandTimeout = 2 * time.Minute

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Pairings and roster lines go to stdout so they can be piped; wiring
	// warnings go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ledger, format, err := app.NewLedger(cfg, logger)
	if err != nil {
		log.Fatalf("build ledger: %v", err)
	}
	fixtures := usecase.NewFixtureService(ledger, idgen.NewRandomGenerator(), format)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch strings.ToLower(strings.TrimSpace(os.Args[1])) {
	case "players":
		err = runPlayers(ctx, ledger)
	case "plan":
		err = runPlan(ctx, fixtures, os.Args[2:])
	case "generate":
		err = runGenerate(ctx, fixtures, os.Args[2:])
	default:
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func runPlayers(ctx context.Context, ledger snooker.Ledger) error {
	players, err := ledger.GetCurrentPlayers(ctx)
	if err != nil {
		return fmt.Errorf("read roster: %w", err)
	}
	if len(players) == 0 {
		fmt.Println("roster is empty")
		return nil
	}
	for _, player := range players {
		fmt.Printf("%s: %s\n", player.Group, player.Name)
	}
	return nil
}

func runPlan(ctx context.Context, fixtures *usecase.FixtureService, args []string) error {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	round := fs.Int("round", 0, "round to pair fixtures for")
	groups := fs.String("groups", "", "comma-separated groups (default: every group)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	plan, err := fixtures.GenerateRound(ctx, usecase.GenerateFixturesInput{
		Round:  *round,
		Groups: splitGroups(*groups),
		DryRun: true,
	})
	if err != nil {
		return err
	}

	printPairings(plan)
	return nil
}

func runGenerate(ctx context.Context, fixtures *usecase.FixtureService, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	round := fs.Int("round", 0, "round to generate fixtures for")
	groups := fs.String("groups", "", "comma-separated groups (default: every group)")
	yes := fs.Bool("yes", false, "append without asking")
	if err := fs.Parse(args); err != nil {
		return err
	}

	input := usecase.GenerateFixturesInput{
		Round:  *round,
		Groups: splitGroups(*groups),
	}

	preview := input
	preview.DryRun = true
	plan, err := fixtures.GenerateRound(ctx, preview)
	if err != nil {
		return err
	}
	printPairings(plan)
	if plan.FixtureCount == 0 {
		return nil
	}

	if !*yes && !confirm(fmt.Sprintf("append %d fixture rows for round %d?", plan.FixtureCount, plan.Round)) {
		fmt.Println("aborted")
		return nil
	}

	result, err := fixtures.GenerateRound(ctx, input)
	if err != nil {
		return err
	}
	for _, m := range result.Fixtures {
		fmt.Printf("%s  %s: %s - %s\n", m.ID, m.Group, m.Player1.Name, m.Player2.Name)
	}
	fmt.Printf("appended %d fixtures for round %d\n", result.FixtureCount, result.Round)
	return nil
}

func printPairings(plan usecase.GenerateFixturesResult) {
	fmt.Printf("round %d: %d fixtures across %d group(s)\n", plan.Round, plan.FixtureCount, plan.GroupCount)
	for _, m := range plan.Fixtures {
		fmt.Printf("%s: %s - %s\n", m.Group, m.Player1.Name, m.Player2.Name)
	}
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func splitGroups(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "usage: %s <players|plan|generate> [flags]\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s players\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "  %s plan -round 2\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "  %s generate -round 2 -groups L1,L2 -yes\n", filepath.Base(os.Args[0]))
}
