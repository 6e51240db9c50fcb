package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mind-engage/scorminspect/internal/analyzer"
	"github.com/mind-engage/scorminspect/internal/scorm"
	"github.com/mind-engage/scorminspect/internal/scorm/repair"
)

var (
	asJSON     bool
	repairPath string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "scormctl",
		Short: "scormctl - inspect and repair SCORM packages",
		Long: `scormctl analyzes SCORM e-learning packages offline: course
structure, content inventory, embedded assessments, and package health.`,
	}

	var analyzeCmd = &cobra.Command{
		Use:   "analyze <package.zip>",
		Short: "Analyze a package and print its normalized description",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw analysis JSON")
	rootCmd.AddCommand(analyzeCmd)

	var validateCmd = &cobra.Command{
		Use:   "validate <package.zip>",
		Short: "Validate a package and optionally write a repaired copy",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}
	validateCmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw report JSON")
	validateCmd.Flags().StringVarP(&repairPath, "repair", "r", "", "Write the repaired archive to this path")
	rootCmd.AddCommand(validateCmd)

	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	pa, err := analyzer.Analyze(context.Background(), data)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", args[0], err)
	}
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(pa)
	}

	color.Cyan("== %s ==", args[0])
	fmt.Printf("Format:   %s %s\n", pa.Format, pa.Version)
	fmt.Printf("Title:    %s\n", pa.Title)
	if len(pa.EntryPoints) > 0 {
		fmt.Printf("Launch:   %s\n", pa.EntryPoints[0])
	}
	fmt.Printf("Content:  %d html, %d video, %d audio, %d images, %d js, %d css, %d other\n",
		len(pa.Content.HTML), len(pa.Content.Video), len(pa.Content.Audio),
		len(pa.Content.Images), len(pa.Content.JavaScript), len(pa.Content.CSS), len(pa.Content.Other))

	color.Cyan("Structure:")
	printTree(pa.Structure)

	color.Cyan("Assessments: %d", len(pa.Assessments))
	for _, a := range pa.Assessments {
		fmt.Printf("  %-24s %-20s %d questions\n", a.SourceFile, a.Strategy, a.QuestionCount)
	}
	for _, wmsg := range pa.Warnings {
		color.Yellow("warning: %s", wmsg)
	}
	return nil
}

func printTree(nodes []scorm.StructureNode) {
	for _, n := range nodes {
		title := n.Title
		if title == "" {
			title = n.Identifier
		}
		for i := 0; i < n.Depth; i++ {
			fmt.Print("  ")
		}
		fmt.Printf("  - %s\n", title)
		printTree(n.Children)
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	res, err := repair.Run(data)
	if err != nil {
		return fmt.Errorf("validate %s: %w", args[0], err)
	}
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		if res.Success {
			color.Green("package is healthy (%d fixes applied)", len(res.Fixes))
		} else {
			color.Red("package has %d unresolved issues", len(res.Issues))
		}
		for _, s := range res.Issues {
			color.Red("issue:   %s", s)
		}
		for _, s := range res.Fixes {
			color.Green("fixed:   %s", s)
		}
		for _, s := range res.Warnings {
			color.Yellow("warning: %s", s)
		}
	}

	if repairPath != "" {
		if len(res.RepairedArchive) == 0 {
			color.Yellow("no fixes applied; nothing to write")
			return nil
		}
		if err := os.WriteFile(repairPath, res.RepairedArchive, 0o644); err != nil {
			return err
		}
		color.Green("repaired archive written to %s", repairPath)
	}
	return nil
}
