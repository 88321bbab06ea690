package key_store

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/pbkdf2"
	"lukechampine.com/frand"

	tplog "github.com/TopiaNetwork/flowlink/log"
)

const (
	saltBytes  = 16
	nonceBytes = 24
	kdfRounds  = 4096
)

type sealedItem struct {
	Salt   []byte `json:"salt"`
	Sealed []byte `json:"sealed"`
}

type BadgerKeyStore struct {
	log        tplog.Logger
	mutex      sync.RWMutex
	db         *badger.DB
	passphrase []byte
}

var _ KeyStore = (*BadgerKeyStore)(nil)

// OpenBadgerKeyStore opens the store under path, an empty path keeps it in memory.
func OpenBadgerKeyStore(log tplog.Logger, path string, passphrase string) (*BadgerKeyStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open key store: %w", err)
	}
	log.Debugf("key store opened, in memory %v", path == "")

	return &BadgerKeyStore{
		log:        log,
		db:         db,
		passphrase: []byte(passphrase),
	}, nil
}

func (bs *BadgerKeyStore) seal(item KeyItem) ([]byte, error) {
	plain, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}

	salt := frand.Bytes(saltBytes)
	var nonce [nonceBytes]byte
	frand.Read(nonce[:])

	sealed := secretbox.Seal(nonce[:], plain, &nonce, bs.deriveKey(salt))
	return json.Marshal(&sealedItem{Salt: salt, Sealed: sealed})
}

func (bs *BadgerKeyStore) open(data []byte) (KeyItem, error) {
	var si sealedItem
	if err := json.Unmarshal(data, &si); err != nil {
		return KeyItem{}, err
	}
	if len(si.Sealed) < nonceBytes {
		return KeyItem{}, errors.New("corrupted key item")
	}

	var nonce [nonceBytes]byte
	copy(nonce[:], si.Sealed[:nonceBytes])
	plain, ok := secretbox.Open(nil, si.Sealed[nonceBytes:], &nonce, bs.deriveKey(si.Salt))
	if !ok {
		return KeyItem{}, ErrWrongPassphrase
	}

	var item KeyItem
	err := json.Unmarshal(plain, &item)
	return item, err
}

func (bs *BadgerKeyStore) deriveKey(salt []byte) *[32]byte {
	var key [32]byte
	copy(key[:], pbkdf2.Key(bs.passphrase, salt, kdfRounds, len(key), sha256.New))
	return &key
}

func (bs *BadgerKeyStore) SetAddr(addr string, item KeyItem) error {
	if len(addr) == 0 || len(item.Seckey) == 0 {
		return errors.New("input invalid addrItem")
	}

	data, err := bs.seal(item)
	if err != nil {
		return err
	}

	bs.mutex.Lock()
	defer bs.mutex.Unlock()

	return bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(addrPrefix+addr), data)
	})
}

func (bs *BadgerKeyStore) get(key string) ([]byte, error) {
	var data []byte
	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	return data, err
}

func (bs *BadgerKeyStore) GetAddr(addr string) (KeyItem, error) {
	bs.mutex.RLock()
	data, err := bs.get(addrPrefix + addr)
	bs.mutex.RUnlock()

	if errors.Is(err, badger.ErrKeyNotFound) {
		return KeyItem{}, ErrAddrNotExist
	}
	if err != nil {
		return KeyItem{}, err
	}

	return bs.open(data)
}

func (bs *BadgerKeyStore) SetDefaultAddr(defaultAddr string) error {
	bs.mutex.Lock()
	defer bs.mutex.Unlock()

	return bs.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(addrPrefix + defaultAddr)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrAddrNotExist
			}
			return err
		}
		return txn.Set([]byte(DefaultAddrKey), []byte(defaultAddr))
	})
}

func (bs *BadgerKeyStore) GetDefaultAddr() (string, error) {
	bs.mutex.RLock()
	defer bs.mutex.RUnlock()

	data, err := bs.get(DefaultAddrKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrDefaultNotSet
	}
	return string(data), err
}

func (bs *BadgerKeyStore) Keys() ([]string, error) {
	bs.mutex.RLock()
	defer bs.mutex.RUnlock()

	var addrs []string
	err := bs.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(addrPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			addrs = append(addrs, strings.TrimPrefix(string(it.Item().Key()), addrPrefix))
		}
		return nil
	})
	return addrs, err
}

// Remove deletes addr, clearing the default when it pointed at addr.
func (bs *BadgerKeyStore) Remove(addr string) error {
	bs.mutex.Lock()
	defer bs.mutex.Unlock()

	return bs.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(DefaultAddrKey))
		if err == nil {
			defaultAddr, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if string(defaultAddr) == addr {
				if err := txn.Delete([]byte(DefaultAddrKey)); err != nil {
					return err
				}
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return txn.Delete([]byte(addrPrefix + addr))
	})
}

func (bs *BadgerKeyStore) Close() error {
	bs.mutex.Lock()
	defer bs.mutex.Unlock()

	return bs.db.Close()
}
