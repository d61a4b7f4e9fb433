// Package ui renders terminal output for the CLI with [lipgloss] styles.
//
// [Styles] is the shared palette; [ExportSummary] formats the result of a bulk export run.
package ui
