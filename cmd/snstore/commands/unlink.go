package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snstore/snstore/layout"
	"github.com/snstore/snstore/segment"
)

var unlinkCmd = &cobra.Command{
	Use:   "unlink <segment>",
	Short: "Remove a segment and its semaphores",
	Long: `Unlink the named shared-memory segment and the semaphores its layout
declares. Attached processes keep their mappings until they detach; new
opens after unlink create a fresh segment.

The library never unlinks on its own, so this is the way to retire a
segment whose schema changed or whose owner crashed mid-handshake.

Examples:
  snstore unlink /flight --schema flight.json`,
	Args: cobra.ExactArgs(1),
	RunE: runUnlink,
}

func runUnlink(cmd *cobra.Command, args []string) error {
	name, err := segmentName(args)
	if err != nil {
		return err
	}

	root, err := loadSchema()
	if err != nil {
		return err
	}

	lay := layout.Compile(root)
	if err := segment.Unlink(name, lay.SemCount, semPrefix); err != nil {
		return err
	}
	fmt.Printf("unlinked %s and %d semaphores\n", name, lay.SemCount+1)

	return nil
}
