package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/TopiaNetwork/flowlink/cmd"
)

var mainCmd = &cobra.Command{Use: "flowlink"}

func main() {
	mainCmd.AddCommand(cmd.WalletCmd())

	if mainCmd.Execute() != nil {
		os.Exit(1)
	}
}
