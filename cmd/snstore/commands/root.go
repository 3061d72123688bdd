// Package commands implements the CLI commands for snstore segment
// management.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/snstore/snstore/schema"
	"github.com/snstore/snstore/store"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"

	// Global flags.
	schemaFile string
	semPrefix  string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "snstore",
	Short: "snstore - shared-memory object store inspection",
	Long: `snstore inspects and manages schema-driven shared-memory segments.

Every command takes a segment name (shm_open style, with a leading slash)
and the JSON schema the segment was created from. The schema compiles into
the same layout the owning processes use, so the tool reads live values
without disturbing them.

Use "snstore [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&schemaFile, "schema", "s", "", "path to the JSON schema file (required)")
	rootCmd.PersistentFlags().StringVar(&semPrefix, "sem-prefix", "", "semaphore name prefix (default: the library default)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(unlinkCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("snstore %s (%s)\n", Version, Commit)
	},
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func segmentName(args []string) (string, error) {
	name := args[0]
	if !strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("segment name %q must start with a slash", name)
	}

	return name, nil
}

func loadSchema() (*schema.Node, error) {
	if schemaFile == "" {
		return nil, fmt.Errorf("--schema is required")
	}

	return schema.FromFile(schemaFile)
}

// openStore attaches to the named segment with the global flags applied.
func openStore(args []string) (*store.Store, error) {
	name, err := segmentName(args)
	if err != nil {
		return nil, err
	}

	root, err := loadSchema()
	if err != nil {
		return nil, err
	}

	opts := []store.Option{store.WithLogger(newLogger())}
	if semPrefix != "" {
		opts = append(opts, store.WithSemaphorePrefix(semPrefix))
	}

	return store.Open(name, root, opts...)
}
