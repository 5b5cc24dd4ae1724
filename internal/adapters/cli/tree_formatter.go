package cli

import (
	"fmt"
	"strings"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/production/dtos"
)

// TreeFormatter renders a solved network as an indented tree: every scope
// lists its links first, then its instances with their nested scopes.
type TreeFormatter struct {
	useColors bool
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(useColors bool) *TreeFormatter {
	return &TreeFormatter{useColors: useColors}
}

type treeEntry struct {
	line  string
	scope string // nested scope opened by this entry, "" for links
}

// FormatTree renders the network under a root line naming the page
func (f *TreeFormatter) FormatTree(title string, network dtos.NetworkDTO) string {
	children := make(map[string][]treeEntry)
	for _, link := range network.Links {
		children[link.Scope] = append(children[link.Scope], treeEntry{line: f.linkLine(link)})
	}
	for _, instance := range network.Instances {
		parent := ""
		if i := strings.LastIndex(instance.Path, "/"); i >= 0 {
			parent = instance.Path[:i]
		}
		children[parent] = append(children[parent], treeEntry{line: f.instanceLine(instance), scope: instance.Path})
	}

	var builder strings.Builder
	builder.WriteString(title + "\n")
	f.formatScope(&builder, children, "", "")
	return builder.String()
}

func (f *TreeFormatter) formatScope(builder *strings.Builder, children map[string][]treeEntry, scope, prefix string) {
	entries := children[scope]
	for i, entry := range entries {
		isLast := i == len(entries)-1
		if isLast {
			builder.WriteString(prefix + "└── " + entry.line + "\n")
		} else {
			builder.WriteString(prefix + "├── " + entry.line + "\n")
		}

		if entry.scope == "" {
			continue
		}
		childPrefix := prefix + "│   "
		if isLast {
			childPrefix = prefix + "    "
		}
		f.formatScope(builder, children, entry.scope, childPrefix)
	}
}

func (f *TreeFormatter) instanceLine(instance dtos.InstanceDTO) string {
	if !instance.Enabled {
		return fmt.Sprintf("[ ] %s (disabled)", instance.Recipe)
	}

	line := fmt.Sprintf("[✓] %s %s/s", instance.Recipe, formatNumber(instance.Rate))
	if instance.Entity != "" {
		line += fmt.Sprintf(" in %s× %s", formatNumber(instance.BuildingCount), instance.Entity)
	}
	if instance.Fuel != "" && instance.FuelPerSecond > 0 {
		line += fmt.Sprintf(", %s %s/s", instance.Fuel, formatNumber(instance.FuelPerSecond))
	}
	if instance.Warnings != "" {
		line += " " + f.color("\033[31m", "⚠ "+instance.Warnings)
	}
	return line
}

func (f *TreeFormatter) linkLine(link dtos.LinkDTO) string {
	line := fmt.Sprintf("⇄ %s", link.Resource)
	if link.Amount != 0 {
		line += " " + formatNumber(link.Amount)
	}
	if link.Algorithm != "MATCH" {
		line += " " + strings.ToLower(link.Algorithm)
	}
	line += " [" + f.stateColor(link.State) + "]"
	if link.NotMatchedFlow != 0 {
		line += fmt.Sprintf(" off by %s", formatNumber(link.NotMatchedFlow))
	}
	return line
}

func (f *TreeFormatter) stateColor(state string) string {
	switch state {
	case "MATCHED":
		return f.color("\033[32m", state) // Green
	case "NOT_MATCHED", "RECURSIVE_NOT_MATCHED":
		return f.color("\033[31m", state) // Red
	default:
		return f.color("\033[33m", state) // Yellow
	}
}

func (f *TreeFormatter) color(code, text string) string {
	if !f.useColors {
		return text
	}
	return code + text + "\033[0m"
}
