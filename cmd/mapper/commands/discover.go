/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: discover.go
Description: Discover command implementation for the Aria State Mapper. Runs a
full discovery session against a target application and exports the resulting
state machine graph.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/aria-state-mapper/pkg/discovery"
)

// RunDiscover executes a full discovery session
func RunDiscover(cmd *cobra.Command, args []string) error {
	fmt.Println("🗺️  Aria State Mapper - Starting Discovery Session")
	fmt.Println("=================================================")
	fmt.Println()

	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	sessionLog, err := SetupLogging()
	if err != nil {
		return err
	}
	defer sessionLog.Close()
	log := sessionLog.GetLogger()

	ctx, cancel := context.WithTimeout(context.Background(), sessionTimeout())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n🛑 Received shutdown signal, stopping discovery...")
		cancel()
	}()

	page, err := StartBrowser(ctx, log)
	if err != nil {
		return err
	}
	defer page.Stop()

	strategy := discovery.StrategyDFS
	if viper.GetBool("use_bfs") {
		strategy = discovery.StrategyBFS
	}

	engine := discovery.NewEngine(discovery.Config{
		BaseURL:            viper.GetString("url"),
		Username:           viper.GetString("username"),
		Password:           viper.GetString("password"),
		Strategy:           strategy,
		MaxStates:          viper.GetInt("max_states"),
		MaxDepth:           viper.GetInt("max_depth"),
		ActionTimeout:      viper.GetDuration("timeout"),
		SafeButtonPatterns: viper.GetStringSlice("safe_buttons"),
		SeedPath:           viper.GetString("seed_map"),
		SkipLoginDiscovery: viper.GetBool("skip_login_discovery"),
	}, page, log)
	engine.AttachEvents(sessionLog)

	var recorder *discovery.ActionRecorder
	if recordPath := viper.GetString("record"); recordPath != "" {
		recorder = discovery.NewActionRecorder()
		engine.AttachRecorder(recorder)
	}

	graph, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	outputPath := viper.GetString("output")
	if err := discovery.SaveGraph(graph, outputPath); err != nil {
		return err
	}
	sessionLog.LogSessionSummary(
		graph.Statistics.StateCount,
		graph.Statistics.TransitionCount,
		graph.Statistics.VisitedStates,
	)

	if recorder != nil {
		if err := recorder.Save(viper.GetString("record")); err != nil {
			log.WithError(err).Warn("Failed to save action recording")
		}
	}

	printGraphSummary(graph, outputPath)
	fmt.Println("\n✨ Discovery session completed!")
	return nil
}

func printGraphSummary(graph *discovery.Graph, outputPath string) {
	fmt.Println()
	fmt.Println("📊 Discovery Results")
	fmt.Println("--------------------")
	fmt.Printf("  States:      %d\n", graph.Statistics.StateCount)
	fmt.Printf("  Transitions: %d\n", graph.Statistics.TransitionCount)
	fmt.Printf("  Visited:     %d\n", graph.Statistics.VisitedStates)
	for stateType, count := range graph.Statistics.StateTypes {
		fmt.Printf("    %-12s %d\n", stateType+":", count)
	}
	if len(graph.SeedVerification) > 0 {
		fmt.Printf("  Seeds verified: %d\n", len(graph.SeedVerification))
	}
	fmt.Printf("  Graph: %s\n", outputPath)
}
