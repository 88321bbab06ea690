package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	tpconfig "github.com/TopiaNetwork/flowlink/configuration"
	tpnode "github.com/TopiaNetwork/flowlink/node"
)

const (
	walletFuncName = "wallet"
	walletCmdDes   = "Operate a wallet: start, init."
)

var configFile string
var keyHex string
var passphrase string
var pairURI string
var syncDevice bool

var walletStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the wallet.",
	Long:  `Starts a wallet that answers dApp sessions and requests from the terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 {
			return fmt.Errorf("trailing args detected")
		}
		// Parsing of the command line is done so silence cmd usage
		cmd.SilenceUsage = true

		config, err := tpconfig.LoadConfiguration(configFile)
		if err != nil {
			return err
		}

		n, err := tpnode.NewWalletNode(config, passphrase, keyHex)
		if err != nil {
			return err
		}
		return n.Start(pairURI, syncDevice)
	},
}

var walletInitCmd = &cobra.Command{
	Use:   "init <file>",
	Short: "Writes the default configuration.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return tpconfig.DefConfiguration().Save(args[0])
	},
}

func startCmd() *cobra.Command {
	flags := walletStartCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "the wallet configuration file, defaults apply when empty")
	flags.StringVarP(&keyHex, "key", "", "", "a hex encoded private key to import as the default wallet key")
	flags.StringVarP(&passphrase, "passphrase", "", os.Getenv("FLOWLINK_PASSPHRASE"), "the key store passphrase, defaults to $FLOWLINK_PASSPHRASE")
	flags.StringVarP(&pairURI, "uri", "", "", "a pairing uri or wallet link to connect once started")
	flags.BoolVarP(&syncDevice, "sync-device", "", false, "start a device sync handshake and print its uri")
	return walletStartCmd
}

var walletCmd = &cobra.Command{
	Use:   walletFuncName,
	Short: fmt.Sprint(walletCmdDes),
	Long:  fmt.Sprint(walletCmdDes),
}

func WalletCmd() *cobra.Command {
	walletCmd.AddCommand(startCmd())
	walletCmd.AddCommand(walletInitCmd)

	return walletCmd
}
