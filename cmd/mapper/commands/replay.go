/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: replay.go
Description: Replay command implementation for the Aria State Mapper. Loads an
exported graph and drives the browser along its transitions to a target state,
or plays back a recorded action session.
*/

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/aria-state-mapper/pkg/discovery"
)

// RunReplay drives the browser to a target state of an exported graph
func RunReplay(cmd *cobra.Command, args []string) error {
	fmt.Println("🗺️  Aria State Mapper - Replaying Graph Path")
	fmt.Println("===========================================")
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

	page, err := StartBrowser(ctx, log)
	if err != nil {
		return err
	}
	defer page.Stop()

	engine := discovery.NewEngine(discovery.Config{
		BaseURL:       viper.GetString("url"),
		Username:      viper.GetString("username"),
		Password:      viper.GetString("password"),
		ActionTimeout: viper.GetDuration("timeout"),
	}, page, log)

	if recordingPath, _ := cmd.Flags().GetString("recording"); recordingPath != "" {
		recording, err := discovery.LoadRecording(recordingPath)
		if err != nil {
			return err
		}
		if err := page.Navigate(ctx, viper.GetString("url")); err != nil {
			return fmt.Errorf("failed to open base URL: %w", err)
		}
		if err := engine.Playback(ctx, recording); err != nil {
			return fmt.Errorf("playback failed: %w", err)
		}
		finalURL, _ := page.CurrentURL(ctx)
		fmt.Printf("\n✨ Played back %d actions (%s)\n", len(recording.Actions), finalURL)
		return nil
	}

	graphPath, _ := cmd.Flags().GetString("graph")
	graph, err := discovery.LoadGraph(graphPath)
	if err != nil {
		return err
	}
	engine.ImportGraph(graph)

	targetState, _ := cmd.Flags().GetString("target-state")
	if err := engine.ReplayTo(ctx, targetState); err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	finalURL, _ := page.CurrentURL(ctx)
	fmt.Printf("\n✨ Reached state %s (%s)\n", targetState, finalURL)
	return nil
}
