package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/snstore/snstore/dynval"
	"github.com/snstore/snstore/mirror"
)

var (
	watchInterval time.Duration
	watchPath     string
)

var watchCmd = &cobra.Command{
	Use:   "watch <segment>",
	Short: "Watch a segment for changes",
	Long: `Poll the segment and print fields that move past their declared
hysteresis, one JSON delta per line. Runs until interrupted.

Examples:
  # Watch the whole segment twice a second
  snstore watch /flight --schema flight.json

  # Watch one subtree at a faster cadence
  snstore watch /flight --schema flight.json --path gps --interval 100ms`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 500*time.Millisecond, "poll interval")
	watchCmd.Flags().StringVar(&watchPath, "path", "", "watch only this subtree")
}

func runWatch(cmd *cobra.Command, args []string) error {
	st, err := openStore(args)
	if err != nil {
		return err
	}
	defer st.Close()

	m, err := mirror.New(st, mirror.WithLogger(newLogger()))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	enc := json.NewEncoder(os.Stdout)
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		delta := dynval.NewMap()
		changed, err := changes(m, delta)
		if err != nil {
			return err
		}
		if !changed {
			continue
		}

		line := struct {
			Time  string          `json:"time"`
			Delta json.RawMessage `json:"delta"`
		}{Time: time.Now().Format(time.RFC3339Nano)}

		doc, err := delta.MarshalJSON()
		if err != nil {
			return err
		}
		line.Delta = doc

		if err := enc.Encode(line); err != nil {
			return err
		}
	}
}

func changes(m *mirror.Mirror, delta *dynval.Value) (bool, error) {
	if watchPath == "" {
		return m.Changes(delta)
	}

	changed, err := m.ChangesAt(delta, watchPath)
	if err != nil {
		return false, fmt.Errorf("path %q: %w", watchPath, err)
	}

	return changed, nil
}
