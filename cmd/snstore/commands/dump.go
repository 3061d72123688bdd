package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/snstore/snstore/compress"
	"github.com/snstore/snstore/snapshot"
)

var (
	dumpOut   string
	dumpCodec string
)

var dumpCmd = &cobra.Command{
	Use:   "dump <segment>",
	Short: "Export segment contents",
	Long: `Dump the segment's live values as JSON, or capture a snapshot file.

Without --out the tree prints to stdout as indented JSON. With --out the
store is captured into a verifiable snapshot blob that "snstore load"
and the snapshot package can read back.

Examples:
  # Print the live tree
  snstore dump /flight --schema flight.json

  # Archive into a compressed snapshot
  snstore dump /flight --schema flight.json --out flight.snap --codec zstd`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpOut, "out", "o", "", "write a snapshot blob to this file instead of printing JSON")
	dumpCmd.Flags().StringVar(&dumpCodec, "codec", "zstd", "snapshot compression: none, zstd, s2, lz4")
}

func runDump(cmd *cobra.Command, args []string) error {
	st, err := openStore(args)
	if err != nil {
		return err
	}
	defer st.Close()

	if dumpOut == "" {
		doc, err := st.Tree().MarshalJSON()
		if err != nil {
			return err
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, doc, "", "  "); err != nil {
			return err
		}
		pretty.WriteByte('\n')

		_, err = pretty.WriteTo(os.Stdout)

		return err
	}

	codec, err := compress.ParseType(dumpCodec)
	if err != nil {
		return err
	}

	if err := snapshot.CaptureFile(st, codec, dumpOut); err != nil {
		return err
	}
	fmt.Printf("captured %s into %s (%s)\n", st.Name(), dumpOut, codec)

	return nil
}
