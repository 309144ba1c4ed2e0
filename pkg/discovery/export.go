/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: export.go
Description: FSM graph serialization. Exports the discovered model as a JSON
document with nodes, edges, run statistics, and seed verification results, and
imports previously exported graphs for seeding and replay.
*/

package discovery

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/kleascm/aria-state-mapper/pkg/model"
)

// Graph is the serialized form of a discovered UI state machine.
type Graph struct {
	BaseURL          string                   `json:"base_url"`
	GraphType        string                   `json:"graph_type"`
	DiscoveryMethod  string                   `json:"discovery_method"`
	GeneratedAt      time.Time                `json:"generated_at"`
	Nodes            []*model.UIState         `json:"nodes"`
	Edges            []*model.StateTransition `json:"edges"`
	Statistics       Statistics               `json:"statistics"`
	SeedVerification []SeedResult             `json:"seed_verification,omitempty"`
}

// Statistics summarizes a discovery run.
type Statistics struct {
	StateCount      int            `json:"state_count"`
	TransitionCount int            `json:"transition_count"`
	VisitedStates   int            `json:"visited_states"`
	StateTypes      map[string]int `json:"state_types"`
}

// ExportGraph snapshots the engine's model into a Graph.
func (e *Engine) ExportGraph() *Graph {
	method := "accessibility_dfs"
	if e.cfg.Strategy == StrategyBFS {
		method = "accessibility_bfs"
	}

	states := e.States()
	stats := Statistics{
		StateCount:      len(states),
		TransitionCount: len(e.transitions),
		StateTypes:      map[string]int{},
	}
	for _, s := range states {
		stats.StateTypes[s.StateType]++
		if s.Visited {
			stats.VisitedStates++
		}
	}

	return &Graph{
		BaseURL:          e.cfg.BaseURL,
		GraphType:        "ui_state_machine",
		DiscoveryMethod:  method,
		GeneratedAt:      time.Now(),
		Nodes:            states,
		Edges:            e.transitions,
		Statistics:       stats,
		SeedVerification: e.seedReport,
	}
}

// ImportGraph loads a previously exported graph into the engine as known
// states and transitions. Imported states start unvisited so exploration will
// still expand them.
func (e *Engine) ImportGraph(g *Graph) {
	for _, s := range g.Nodes {
		if _, exists := e.states[s.StateID]; exists {
			continue
		}
		s.Visited = false
		e.addState(s)
	}
	for _, t := range g.Edges {
		if _, dup := e.transitionSigs[t.Signature()]; dup {
			continue
		}
		e.transitionSigs[t.Signature()] = struct{}{}
		e.transitions = append(e.transitions, t)
	}
}

// SaveGraph writes the graph as indented JSON.
func SaveGraph(g *Graph, path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write graph to %s: %w", path, err)
	}
	return nil
}

// LoadGraph reads a graph exported by SaveGraph.
func LoadGraph(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph from %s: %w", path, err)
	}
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse graph %s: %w", path, err)
	}
	return &g, nil
}
