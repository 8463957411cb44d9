package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "securepass",
	Short: "SecurePass is a local encrypted secret vault",
	Long: `A local secret vault for login passwords, two-factor backup codes,
and AI-service API keys. Collections are encrypted at rest with AES-256-GCM;
plaintext never touches the underlying store.`,
	Version: Version,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
