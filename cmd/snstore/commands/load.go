package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snstore/snstore/snapshot"
)

var loadCmd = &cobra.Command{
	Use:   "load <segment> <snapshot-file>",
	Short: "Apply a snapshot to a segment",
	Long: `Decode a snapshot file and write its values into the live segment.

Fields present in the snapshot but absent from the schema are skipped.
Every written field gets a fresh update timestamp, so waiters see the
load as a normal burst of writes.

Examples:
  snstore load /flight --schema flight.json flight.snap`,
	Args: cobra.ExactArgs(2),
	RunE: runLoad,
}

func runLoad(cmd *cobra.Command, args []string) error {
	snap, err := snapshot.DecodeFile(args[1])
	if err != nil {
		return err
	}

	st, err := openStore(args[:1])
	if err != nil {
		return err
	}
	defer st.Close()

	if !st.Root().Set(snap.Tree, true) {
		return fmt.Errorf("some snapshot values did not apply cleanly")
	}
	fmt.Printf("loaded %s into %s (captured %s)\n",
		args[1], st.Name(), snap.CapturedAt.Format("2006-01-02 15:04:05"))

	return nil
}
