/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: verify.go
Description: Verify command implementation for the Aria State Mapper. Grades
every state of an exported graph against the live application and writes the
refreshed graph with its verification report.
*/

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/aria-state-mapper/pkg/discovery"
)

// RunVerify re-visits every state of an exported graph against the live app
func RunVerify(cmd *cobra.Command, args []string) error {
	fmt.Println("🗺️  Aria State Mapper - Verifying Graph")
	fmt.Println("======================================")
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

	graphPath, _ := cmd.Flags().GetString("graph")
	graph, err := discovery.LoadGraph(graphPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), sessionTimeout())
	defer cancel()

	page, err := StartBrowser(ctx, log)
	if err != nil {
		return err
	}
	defer page.Stop()

	engine := discovery.NewEngine(discovery.Config{
		BaseURL:       viper.GetString("url"),
		ActionTimeout: viper.GetDuration("timeout"),
	}, page, log)
	engine.ImportGraph(graph)

	if err := engine.VerifySeeds(ctx); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	refreshed := engine.ExportGraph()
	outputPath, _ := cmd.Flags().GetString("output")
	if err := discovery.SaveGraph(refreshed, outputPath); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("📊 Verification Results")
	fmt.Println("-----------------------")
	counts := map[string]int{}
	for _, result := range refreshed.SeedVerification {
		counts[result.Status]++
	}
	for status, count := range counts {
		fmt.Printf("  %-12s %d\n", status+":", count)
	}
	fmt.Printf("  Refreshed graph: %s\n", outputPath)
	fmt.Println("\n✨ Verification completed!")
	return nil
}
