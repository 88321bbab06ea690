package key_store

import (
	"errors"

	tpcrtypes "github.com/TopiaNetwork/flowlink/crypt/types"
)

var (
	ErrAddrNotExist    = errors.New("addr doesn't exist")
	ErrDefaultNotSet   = errors.New("default addr hasn't been set")
	ErrWrongPassphrase = errors.New("wrong key store passphrase")
)

/*
KeyStore stores 2 kinds of items.

Address item:
	key: 	account address
	value: 	KeyItem, sealed with the store passphrase

Default item:
	key: 	DefaultAddrKey
	value: 	the address the wallet signs with
*/
type KeyStore interface {
	SetAddr(addr string, item KeyItem) error
	GetAddr(addr string) (KeyItem, error)

	SetDefaultAddr(defaultAddr string) error
	GetDefaultAddr() (defaultAddr string, err error)

	Keys() (addrs []string, err error) // all addrs stored in the wallet.

	Remove(addr string) error

	Close() error
}

type KeyItem struct {
	KeyIndex uint32               `json:"keyIndex"`
	Seckey   tpcrtypes.PrivateKey `json:"seckey"`
}

const (
	DefaultAddrKey = "default_Addr"
	addrPrefix     = "addr/"
)
