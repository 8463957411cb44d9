package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	bboltstorage "github.com/securepass/securepass/storage/bbolt"
	"github.com/securepass/securepass/vault"
)

var (
	auditDataDir string
	auditJSON    bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the vault audit ledger",
	Long:  `Commands for listing and clearing the append-only audit ledger.`,
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the audit ledger, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, closeStore, err := openLedger()
		if err != nil {
			return err
		}
		defer closeStore()

		entries := ledger.Load()
		if auditJSON {
			return json.NewEncoder(os.Stdout).Encode(entries)
		}
		for _, e := range entries {
			line := fmt.Sprintf("%s  %s", e.Timestamp.Format(time.RFC3339), e.Action)
			if e.Details != "" {
				line += "  (" + e.Details + ")"
			}
			fmt.Println(line)
		}
		fmt.Printf("%d entries\n", len(entries))
		return nil
	},
}

var auditClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the audit ledger entirely",
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, closeStore, err := openLedger()
		if err != nil {
			return err
		}
		defer closeStore()

		if err := ledger.Clear(); err != nil {
			return fmt.Errorf("clearing audit ledger: %w", err)
		}
		fmt.Println("Audit ledger cleared")
		return nil
	},
}

func openLedger() (*vault.AuditLog, func(), error) {
	blobs, err := bboltstorage.NewStoreFromFile(filepath.Join(auditDataDir, "vault.db"), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("opening vault storage: %w", err)
	}
	return vault.NewAuditLog(blobs), func() { blobs.Close() }, nil
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd)
	auditCmd.AddCommand(auditClearCmd)
	auditCmd.PersistentFlags().StringVar(&auditDataDir, "data-dir", "./data", "Directory for persistent data")
	auditListCmd.Flags().BoolVar(&auditJSON, "json", false, "Print entries as JSON")
}
