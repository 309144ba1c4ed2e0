/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: recorder_test.go
Description: Tests for the action recorder. Covers recording during a discovery
run, save/load round trips, and playing a recorded session back against the
fake page controller.
*/

package discovery_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/aria-state-mapper/pkg/discovery"
	"github.com/kleascm/aria-state-mapper/pkg/model"
)

// TestRecorderCapturesRun tests that an attached recorder captures every
// registered transition and survives a save/load round trip
func TestRecorderCapturesRun(t *testing.T) {
	page := newSite()
	engine := discovery.NewEngine(discovery.Config{
		BaseURL:   baseURL,
		MaxStates: 10,
	}, page, testLogger())

	recorder := discovery.NewActionRecorder()
	engine.AttachRecorder(recorder)

	graph, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, recorder.Actions, len(graph.Edges))

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, recorder.Save(path))

	loaded, err := discovery.LoadRecording(path)
	require.NoError(t, err)
	require.Len(t, loaded.Actions, len(recorder.Actions))
	for i, action := range loaded.Actions {
		assert.Equal(t, recorder.Actions[i].ActionType, action.ActionType)
		assert.Equal(t, recorder.Actions[i].ToStateID, action.ToStateID)
	}
}

// TestPlaybackRecording tests replaying a recorded click against a fresh page
func TestPlaybackRecording(t *testing.T) {
	page := newSite()
	engine := discovery.NewEngine(discovery.Config{BaseURL: baseURL}, page, testLogger())

	recording := &discovery.ActionRecorder{Actions: []*model.StateTransition{
		model.NewTransition("V_HOME", "V_PRODUCTS", model.ActionClick, model.ElementDescriptor{
			ElementType: "link",
			Name:        "Products",
			Locators:    map[string]string{model.LocatorText: "Products"},
		}),
	}}

	require.NoError(t, engine.Playback(context.Background(), recording))
	assert.Equal(t, baseURL+"/products", page.current)
}

// TestPlaybackMissingTrigger tests that playback fails when a recorded
// trigger no longer resolves on the live page
func TestPlaybackMissingTrigger(t *testing.T) {
	page := newSite()
	engine := discovery.NewEngine(discovery.Config{BaseURL: baseURL}, page, testLogger())

	recording := &discovery.ActionRecorder{Actions: []*model.StateTransition{
		model.NewTransition("V_HOME", "V_GONE", model.ActionClick, model.ElementDescriptor{
			ElementType: "link",
			Name:        "Retired",
			Locators:    map[string]string{model.LocatorText: "Retired"},
		}),
	}}

	err := engine.Playback(context.Background(), recording)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Retired")
}
