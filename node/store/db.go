package store

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	bolt "go.etcd.io/bbolt"

	"github.com/kfichter/plasma-core/plasma"
)

var (
	bucketRoots    = []byte("roots_by_block")
	bucketExits    = []byte("exits_by_position")
	bucketStates   = []byte("state_by_position")
	bucketBalances = []byte("balance_by_address")
	bucketMeta     = []byte("meta")
)

var keyCurrentBlock = []byte("current_block")

// DB persists the exit game: committed block roots, pending exits with
// their states, and withdrawable balances. The priority queue is not
// stored; it is rebuilt from the pending exits at startup.
type DB struct {
	path string
	db   *bolt.DB
}

func Open(datadir string) (*DB, error) {
	if datadir == "" {
		return nil, fmt.Errorf("datadir required")
	}
	if err := os.MkdirAll(filepath.Join(datadir, "db"), 0o750); err != nil {
		return nil, err
	}

	path := filepath.Join(datadir, "db", "exitgame.db")
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}

	d := &DB{path: path, db: bdb}

	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketRoots, bucketExits, bucketStates, bucketBalances, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) Path() string { return d.path }

// CurrentBlock returns 0 when the store has never been initialized.
func (d *DB) CurrentBlock() (uint64, error) {
	var out uint64
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get(keyCurrentBlock)
		if v == nil {
			return nil
		}
		if len(v) != 8 {
			return fmt.Errorf("meta: bad current_block length %d", len(v))
		}
		out = binary.BigEndian.Uint64(v)
		return nil
	})
	return out, err
}

func (d *DB) SetCurrentBlock(blk uint64) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyCurrentBlock, u64Key(blk))
	})
}

// CommitBlockRoot writes the root for blk and advances the block counter
// in one transaction.
func (d *DB) CommitBlockRoot(blk uint64, root [32]byte, nextBlk uint64) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketRoots).Put(u64Key(blk), root[:]); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keyCurrentBlock, u64Key(nextBlk))
	})
}

func (d *DB) GetBlockRoot(blk uint64) ([32]byte, bool, error) {
	var out [32]byte
	var ok bool
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketRoots).Get(u64Key(blk))
		if v == nil {
			return nil
		}
		if len(v) != 32 {
			return fmt.Errorf("roots: bad root length %d", len(v))
		}
		copy(out[:], v)
		ok = true
		return nil
	})
	return out, ok, err
}

// SaveStartedExit persists the exit record and marks its position pending.
func (d *DB) SaveStartedExit(e plasma.Exit) error {
	val := encodeExit(e)
	key := u64Key(uint64(e.Position))
	return d.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketExits).Put(key, val); err != nil {
			return err
		}
		return tx.Bucket(bucketStates).Put(key, []byte{byte(plasma.StatePending)})
	})
}

// RemoveChallengedExit deletes the exit record, marks the position
// removed, and credits the forfeited bond to the challenger.
func (d *DB) RemoveChallengedExit(pos plasma.Position, challenger common.Address, bond uint64) error {
	key := u64Key(uint64(pos))
	return d.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketExits).Delete(key); err != nil {
			return err
		}
		if err := tx.Bucket(bucketStates).Put(key, []byte{byte(plasma.StateRemoved)}); err != nil {
			return err
		}
		return creditBalance(tx, challenger, bond)
	})
}

// FinalizePaidExit deletes the exit record, marks the position finalized,
// and credits amount plus bond to the owner.
func (d *DB) FinalizePaidExit(pos plasma.Position, owner common.Address, credit uint64) error {
	key := u64Key(uint64(pos))
	return d.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketExits).Delete(key); err != nil {
			return err
		}
		if err := tx.Bucket(bucketStates).Put(key, []byte{byte(plasma.StateFinalized)}); err != nil {
			return err
		}
		return creditBalance(tx, owner, credit)
	})
}

func (d *DB) GetExit(pos plasma.Position) (plasma.Exit, bool, error) {
	var out plasma.Exit
	var ok bool
	key := u64Key(uint64(pos))
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketExits).Get(key)
		if v == nil {
			return nil
		}
		e, err := decodeExit(pos, v)
		if err != nil {
			return err
		}
		out = e
		ok = true
		return nil
	})
	return out, ok, err
}

func (d *DB) LoadRoots() (map[uint64][32]byte, error) {
	out := make(map[uint64][32]byte)
	err := d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRoots).ForEach(func(k, v []byte) error {
			if len(k) != 8 || len(v) != 32 {
				return fmt.Errorf("roots: bad entry (key %d bytes, value %d bytes)", len(k), len(v))
			}
			var root [32]byte
			copy(root[:], v)
			out[binary.BigEndian.Uint64(k)] = root
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DB) LoadExits() (map[plasma.Position]plasma.Exit, error) {
	out := make(map[plasma.Position]plasma.Exit)
	err := d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketExits).ForEach(func(k, v []byte) error {
			if len(k) != 8 {
				return fmt.Errorf("exits: bad key length %d", len(k))
			}
			pos := plasma.Position(binary.BigEndian.Uint64(k))
			e, err := decodeExit(pos, v)
			if err != nil {
				return err
			}
			out[pos] = e
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DB) LoadStates() (map[plasma.Position]plasma.ExitState, error) {
	out := make(map[plasma.Position]plasma.ExitState)
	err := d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketStates).ForEach(func(k, v []byte) error {
			if len(k) != 8 || len(v) != 1 {
				return fmt.Errorf("states: bad entry (key %d bytes, value %d bytes)", len(k), len(v))
			}
			out[plasma.Position(binary.BigEndian.Uint64(k))] = plasma.ExitState(v[0])
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DB) LoadBalances() (map[common.Address]uint64, error) {
	out := make(map[common.Address]uint64)
	err := d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBalances).ForEach(func(k, v []byte) error {
			if len(k) != common.AddressLength || len(v) != 8 {
				return fmt.Errorf("balances: bad entry (key %d bytes, value %d bytes)", len(k), len(v))
			}
			out[common.BytesToAddress(k)] = binary.LittleEndian.Uint64(v)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func creditBalance(tx *bolt.Tx, addr common.Address, amount uint64) error {
	b := tx.Bucket(bucketBalances)
	var cur uint64
	if v := b.Get(addr[:]); v != nil {
		if len(v) != 8 {
			return fmt.Errorf("balances: bad value length %d", len(v))
		}
		cur = binary.LittleEndian.Uint64(v)
	}
	var val [8]byte
	binary.LittleEndian.PutUint64(val[:], cur+amount)
	return b.Put(addr[:], val[:])
}

// u64Key encodes big-endian so bucket iteration follows numeric order.
func u64Key(v uint64) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, v)
	return out
}
