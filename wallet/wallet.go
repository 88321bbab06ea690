package wallet

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/TopiaNetwork/flowlink/crypt/secp256"
	tpcrtypes "github.com/TopiaNetwork/flowlink/crypt/types"
	tplog "github.com/TopiaNetwork/flowlink/log"
	tplogcmm "github.com/TopiaNetwork/flowlink/log/common"
	"github.com/TopiaNetwork/flowlink/wallet/key_store"
)

const (
	MOD_NAME = "wallet"
)

// Wallet keeps the secp256k1 keys the wallet signs with, addressed by their native address.
type Wallet interface {
	Create() (string, error)

	// Import stores privKey, keyIndex is the key's index on its native account.
	Import(privKey tpcrtypes.PrivateKey, keyIndex uint32) (string, error)

	Delete(addr string) error

	SetDefault(addr string) error

	Default() (string, error)

	Export(addr string) (tpcrtypes.PrivateKey, error)

	Has(addr string) (bool, error)

	List() ([]string, error)

	Lock(addr string, lock bool) error

	IsLocked(addr string) bool

	// Signer returns a signer over the key stored at addr.
	Signer(addr string) (*secp256.LocalSigner, error)

	Close() error
}

var ErrAddrLocked = errors.New("this addr has been locked")

type wallet struct {
	log    tplog.Logger
	level  tplogcmm.LogLevel
	ks     key_store.KeyStore
	mutex  sync.RWMutex
	locked map[string]bool
}

func NewWallet(level tplogcmm.LogLevel, log tplog.Logger, ks key_store.KeyStore) Wallet {
	return &wallet{
		log:    tplog.CreateModuleLogger(level, MOD_NAME, log),
		level:  level,
		ks:     ks,
		locked: make(map[string]bool),
	}
}

// NativeAddress takes the low 8 bytes of the EVM address of the key.
func NativeAddress(evm common.Address) string {
	return "0x" + common.Bytes2Hex(evm.Bytes()[common.AddressLength-8:])
}

// Addresses derives the native and EVM addresses controlled by privKey.
func Addresses(privKey tpcrtypes.PrivateKey) (string, common.Address, error) {
	key, err := crypto.ToECDSA(privKey)
	if err != nil {
		return "", common.Address{}, fmt.Errorf("invalid private key: %w", err)
	}

	evm := crypto.PubkeyToAddress(key.PublicKey)
	return NativeAddress(evm), evm, nil
}

func (w *wallet) Create() (string, error) {
	sec, _, err := secp256.GeneratePriPubKey()
	if err != nil {
		return "", err
	}

	return w.Import(sec, 0)
}

func (w *wallet) Import(privKey tpcrtypes.PrivateKey, keyIndex uint32) (string, error) {
	addr, _, err := Addresses(privKey)
	if err != nil {
		return "", err
	}

	err = w.ks.SetAddr(addr, key_store.KeyItem{
		KeyIndex: keyIndex,
		Seckey:   privKey,
	})
	if err != nil {
		return "", err
	}

	w.log.Infof("key of %s stored", addr)
	return addr, nil
}

func (w *wallet) Delete(addr string) error {
	if w.IsLocked(addr) {
		return ErrAddrLocked
	}

	return w.ks.Remove(addr)
}

func (w *wallet) SetDefault(addr string) error {
	return w.ks.SetDefaultAddr(addr)
}

func (w *wallet) Default() (string, error) {
	return w.ks.GetDefaultAddr()
}

func (w *wallet) Export(addr string) (tpcrtypes.PrivateKey, error) {
	if w.IsLocked(addr) {
		return nil, ErrAddrLocked
	}

	item, err := w.ks.GetAddr(addr)
	if err != nil {
		return nil, err
	}
	return item.Seckey, nil
}

func (w *wallet) Has(addr string) (bool, error) {
	_, err := w.ks.GetAddr(addr)
	if errors.Is(err, key_store.ErrAddrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (w *wallet) List() ([]string, error) {
	return w.ks.Keys()
}

func (w *wallet) Lock(addr string, lock bool) error {
	has, err := w.Has(addr)
	if err != nil {
		return err
	}
	if !has {
		return key_store.ErrAddrNotExist
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if lock {
		w.locked[addr] = true
	} else {
		delete(w.locked, addr)
	}
	return nil
}

func (w *wallet) IsLocked(addr string) bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()

	return w.locked[addr]
}

func (w *wallet) Signer(addr string) (*secp256.LocalSigner, error) {
	if w.IsLocked(addr) {
		return nil, ErrAddrLocked
	}

	item, err := w.ks.GetAddr(addr)
	if err != nil {
		return nil, err
	}

	return secp256.New(tplog.CreateModuleLogger(w.level, "Signer", w.log), addr, item.KeyIndex, item.Seckey)
}

func (w *wallet) Close() error {
	return w.ks.Close()
}
