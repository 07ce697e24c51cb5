// Package cli wires the ghostdom command line: load an HTML document,
// run its inline scripts, and optionally dispatch synthetic events.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajmills/ghostdom/html"
	"github.com/ajmills/ghostdom/js"
)

var (
	verbose bool
	clickID string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ghostdom <file.html>",
	Short: "ghostdom is a headless browser engine core",
	Long: `ghostdom loads an HTML document, binds it to a JavaScript runtime,
runs its inline scripts, and can dispatch synthetic events into the page.`,
	Args: cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVar(&clickID, "click", "", "dispatch a click at the element with this id after scripts run")
}

func run(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	runtime := js.NewRuntime(js.WithLogger(logger))
	executor := js.NewScriptExecutor(runtime)
	executor.SetupDocument(doc)

	for _, scriptErr := range executor.RunScripts(doc) {
		logger.Warn("script error", zap.Error(scriptErr))
	}

	if clickID != "" {
		el := doc.GetElementById(clickID)
		if el == nil {
			return fmt.Errorf("no element with id %q", clickID)
		}
		proceed := executor.Click(el)
		logger.Info("dispatched click",
			zap.String("id", clickID),
			zap.Bool("defaultAllowed", proceed))
	}

	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
