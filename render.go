package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/buffos/go-reflections/internal/export"
	"github.com/buffos/go-reflections/internal/geometry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// renderFigure is the offline path: read a figure file and write one output
// file without starting the server.
func renderFigure(cmd *cobra.Command, figureFile, format string, cfg *viper.Viper) (err error) {
	format = strings.ToLower(format)
	if export.ContentType(format) == "" {
		return fmt.Errorf("reflections: unsupported export format '%s'. Supported formats: %s",
			format, strings.Join(export.Formats(), ", "))
	}

	logger.Infof("Reading figure file: %s", figureFile)
	fig, err := export.LoadFigure(figureFile, logger)
	if err != nil {
		return err
	}

	if k := cfg.GetString("kind"); k != "" {
		kind, err := geometry.ParseKind(k)
		if err != nil {
			return fmt.Errorf("reflections: --kind: %w", err)
		}
		fig.Reflection.Kind = kind
	}
	if cmd.Flags().Changed("param") {
		fig.Reflection.Param = cfg.GetFloat64("param")
		if !geometry.IsFinite(fig.Reflection.Param) {
			return fmt.Errorf("reflections: --param: %w", geometry.ErrNotFinite)
		}
	}
	if !fig.Reflection.Kind.Valid() {
		return fmt.Errorf("reflections: figure file has no valid reflection kind")
	}
	if len(fig.Points) == 0 {
		return fmt.Errorf("reflections: no vertices found in '%s'", figureFile)
	}
	logger.WithField("points", len(fig.Points)).Infof("Reflecting %s", fig.Reflection.Equation())

	exp, err := newExporter(cfg)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	outputFile := cfg.GetString("output")
	if outputFile != "" {
		logger.Infof("Output directed to file: %s", outputFile)
		var f *os.File
		f, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("reflections: creating output file '%s': %w", outputFile, err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("reflections: closing output file '%s': %w", outputFile, closeErr)
			}
			if err != nil {
				logger.Infof("Removing incomplete file: %s", outputFile)
				if removeErr := os.Remove(outputFile); removeErr != nil {
					logger.WithError(removeErr).Warnf("Could not remove output file '%s'", outputFile)
				}
			}
		}()
		out = f
	}

	logger.Infof("Generating output for format: %s", format)
	if err = exp.Write(cmd.Context(), fig.Snapshot(), format, out); err != nil {
		return fmt.Errorf("reflections: generating %s: %w", format, err)
	}
	logger.Infof("Successfully generated %s output.", strings.ToUpper(format))
	return nil
}
