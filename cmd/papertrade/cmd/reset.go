package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrade/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe persisted session state",
	Long:  `Clears the persisted portfolio, journal and settings. The next run starts a fresh session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kv, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer kv.Close()

		if err := kv.Clear(); err != nil {
			return fmt.Errorf("clear store: %w", err)
		}
		fmt.Println("session state cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
