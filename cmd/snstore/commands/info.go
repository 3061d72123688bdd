package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <segment>",
	Short: "Show segment layout and state",
	Long: `Attach to a segment and print its compiled layout and live state.

Examples:
  # Inspect a running segment
  snstore info /flight --schema flight.json`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	st, err := openStore(args)
	if err != nil {
		return err
	}
	defer st.Close()

	lay := st.Layout()

	fmt.Printf("segment:      %s\n", st.Name())
	fmt.Printf("payload size: %d bytes\n", lay.PayloadSize)
	fmt.Printf("scalars:      %d\n", lay.ScalarCount)
	fmt.Printf("semaphores:   %d\n", lay.SemCount)
	fmt.Printf("fingerprint:  %016x\n", st.Fingerprint())
	fmt.Printf("pools:        doubles=%d int64=%d int32=%d int16=%d bytes=%d chars=%d\n",
		lay.Pools.Doubles, lay.Pools.Int64, lay.Pools.Int32,
		lay.Pools.Int16, lay.Pools.EightBit, lay.Pools.Char)

	if ms, ok := st.Root().UpdateTime(); ok {
		fmt.Printf("last update:  %s after boot\n", time.Duration(ms)*time.Millisecond)
	} else {
		fmt.Printf("last update:  never\n")
	}

	return nil
}
