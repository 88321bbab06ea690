package node

import (
	"errors"
	"path/filepath"

	tpconfig "github.com/TopiaNetwork/flowlink/configuration"
	"github.com/TopiaNetwork/flowlink/crypt"
	"github.com/TopiaNetwork/flowlink/crypt/secp256"
	tplog "github.com/TopiaNetwork/flowlink/log"
	tplogcmm "github.com/TopiaNetwork/flowlink/log/common"
	tpwallet "github.com/TopiaNetwork/flowlink/wallet"
	"github.com/TopiaNetwork/flowlink/wallet/key_store"
)

const keysFolderName = "wallet"

// openWallet opens the key store under config.RootPath, an empty RootPath keeps the keys in memory.
func openWallet(level tplogcmm.LogLevel, log tplog.Logger, config *tpconfig.NodeConfiguration, passphrase string, keyHex string) (tpwallet.Wallet, error) {
	path := ""
	if config.RootPath != "" {
		path = filepath.Join(config.RootPath, keysFolderName)
	}

	ks, err := key_store.OpenBadgerKeyStore(tplog.CreateModuleLogger(level, "KeyStore", log), path, passphrase)
	if err != nil {
		return nil, err
	}
	w := tpwallet.NewWallet(level, log, ks)

	addr := ""
	if keyHex != "" {
		priKey, err := crypt.DecodeHex(keyHex)
		if err != nil {
			w.Close()
			return nil, err
		}
		if addr, err = w.Import(priKey, config.KeyIndex); err != nil {
			w.Close()
			return nil, err
		}
	} else if _, err = w.Default(); errors.Is(err, key_store.ErrDefaultNotSet) {
		log.Warn("no wallet key stored, creating one")
		if addr, err = w.Create(); err != nil {
			w.Close()
			return nil, err
		}
	} else if err != nil {
		w.Close()
		return nil, err
	}

	if addr != "" {
		if err = w.SetDefault(addr); err != nil {
			w.Close()
			return nil, err
		}
	}

	return w, nil
}

// loadSigner signs with the default key, on behalf of config.Address when it names the native account.
func loadSigner(level tplogcmm.LogLevel, log tplog.Logger, w tpwallet.Wallet, config *tpconfig.NodeConfiguration) (*secp256.LocalSigner, *staticAccounts, error) {
	addr, err := w.Default()
	if err != nil {
		return nil, nil, err
	}
	priKey, err := w.Export(addr)
	if err != nil {
		return nil, nil, err
	}
	_, evm, err := tpwallet.Addresses(priKey)
	if err != nil {
		return nil, nil, err
	}

	native := addr
	if config.Address != "" {
		native = config.Address
	}

	signer, err := secp256.New(tplog.CreateModuleLogger(level, "Signer", log), native, config.KeyIndex, priKey)
	if err != nil {
		return nil, nil, err
	}

	return signer, newStaticAccounts(native, evm), nil
}
