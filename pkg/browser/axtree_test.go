/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: axtree_test.go
Description: Tests for assembling accessibility trees from the flat node list
the CDP Accessibility domain returns: parent/child linking, ignored-node
promotion, and property lifting.
*/

package browser_test

import (
	"strconv"
	"testing"

	"github.com/chromedp/cdproto/accessibility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/aria-state-mapper/pkg/browser"
)

func axValue(s string) *accessibility.Value {
	return &accessibility.Value{Value: []byte(strconv.Quote(s))}
}

// TestBuildAXTree tests tree assembly with an ignored wrapper and properties
func TestBuildAXTree(t *testing.T) {
	nodes := []*accessibility.Node{
		{
			NodeID:   accessibility.NodeID("1"),
			Role:     axValue("RootWebArea"),
			ChildIDs: []accessibility.NodeID{"2", "3"},
		},
		{
			// Ignored wrapper with a single child: the child is promoted.
			NodeID:   accessibility.NodeID("2"),
			ParentID: accessibility.NodeID("1"),
			Ignored:  true,
			ChildIDs: []accessibility.NodeID{"4"},
		},
		{
			NodeID:   accessibility.NodeID("3"),
			ParentID: accessibility.NodeID("1"),
			Role:     axValue("heading"),
			Name:     axValue("Overview"),
			Properties: []*accessibility.Property{
				{Name: accessibility.PropertyNameLevel, Value: &accessibility.Value{Value: []byte("2")}},
			},
		},
		{
			NodeID:   accessibility.NodeID("4"),
			ParentID: accessibility.NodeID("2"),
			Role:     axValue("link"),
			Name:     axValue("Docs"),
			Properties: []*accessibility.Property{
				{Name: accessibility.PropertyNameURL, Value: axValue("https://app.test/docs")},
			},
		},
	}

	tree := browser.BuildAXTree(nodes)
	require.NotNil(t, tree)
	assert.Equal(t, "RootWebArea", tree.Role)
	require.Len(t, tree.Children, 2)

	link := tree.Children[0]
	assert.Equal(t, "link", link.Role)
	assert.Equal(t, "Docs", link.Name)
	assert.Equal(t, "https://app.test/docs", link.Value)

	heading := tree.Children[1]
	assert.Equal(t, "heading", heading.Role)
	assert.Equal(t, "Overview", heading.Name)
	assert.Equal(t, 2, heading.Level)
}

// TestBuildAXTreeEmpty tests that an empty node list yields no tree
func TestBuildAXTreeEmpty(t *testing.T) {
	assert.Nil(t, browser.BuildAXTree(nil))
}

// TestBuildAXTreeStateProperties tests lifting of dynamic ARIA states
func TestBuildAXTreeStateProperties(t *testing.T) {
	nodes := []*accessibility.Node{
		{
			NodeID:   accessibility.NodeID("1"),
			Role:     axValue("RootWebArea"),
			ChildIDs: []accessibility.NodeID{"2"},
		},
		{
			NodeID:   accessibility.NodeID("2"),
			ParentID: accessibility.NodeID("1"),
			Role:     axValue("button"),
			Name:     axValue("Menu"),
			Properties: []*accessibility.Property{
				{Name: accessibility.PropertyNameExpanded, Value: &accessibility.Value{Value: []byte("true")}},
				{Name: accessibility.PropertyNameDisabled, Value: &accessibility.Value{Value: []byte("false")}},
			},
		},
	}

	tree := browser.BuildAXTree(nodes)
	require.NotNil(t, tree)
	require.Len(t, tree.Children, 1)

	button := tree.Children[0]
	require.NotNil(t, button.Expanded)
	assert.True(t, *button.Expanded)
	require.NotNil(t, button.Disabled)
	assert.False(t, *button.Disabled)
}
