package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportFlags struct {
	format string
	output string
}

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export an initiative to HTML, PDF or DOCX",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&directoryFlag, "directory", "d", "", "Configured directory name (default directory if empty)")
	f.StringVar(&exportFlags.format, "format", "html", "Output format: html, pdf or docx")
	f.StringVarP(&exportFlags.output, "output", "o", "", "Output file (defaults to the suggested file name)")
}

func runExport(cmd *cobra.Command, args []string) error {
	result, err := openService().Export(cmd.Context(), args[0], directoryFlag, exportFlags.format)
	if err != nil {
		return err
	}
	target := exportFlags.output
	if target == "" {
		target = result.Filename
	}
	if target == "-" {
		_, err := cmd.OutOrStdout().Write(result.Data)
		return err
	}
	if err := os.WriteFile(target, result.Data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", target, len(result.Data))
	return nil
}
