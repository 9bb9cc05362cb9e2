package userRepo

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"filevault/internal/apperrors"
	"filevault/internal/model/user"

	badger "github.com/dgraph-io/badger/v4"
)

// Key layout:
//
//	users/name/<username>  -> 8-byte big-endian id
//	users/id/<8-byte id>   -> JSON encoded user.User
//	seq/users              -> id sequence
var (
	namePrefix = []byte("users/name/")
	idPrefix   = []byte("users/id/")
	seqKey     = []byte("seq/users")
)

// BadgerRepo is an embedded credential store for single-node deployments.
// Username uniqueness comes from badger's optimistic transactions: two
// concurrent inserts of the same name conflict at commit.
type BadgerRepo struct {
	db  *badger.DB
	seq *badger.Sequence
}

// OpenBadger opens (or creates) the store at path. An empty path keeps
// everything in memory.
func OpenBadger(path string) (*BadgerRepo, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	seq, err := db.GetSequence(seqKey, 64)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("badger sequence: %w", err)
	}
	return &BadgerRepo{db: db, seq: seq}, nil
}

func (r *BadgerRepo) Close() error {
	if err := r.seq.Release(); err != nil {
		return err
	}
	return r.db.Close()
}

func nameKey(username string) []byte {
	return append(append([]byte{}, namePrefix...), username...)
}

func idKey(id int64) []byte {
	k := append([]byte{}, idPrefix...)
	return binary.BigEndian.AppendUint64(k, uint64(id))
}

func (r *BadgerRepo) Create(ctx context.Context, username, passwordHash string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	next, err := r.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("next user id: %w", err)
	}
	// Sequences start at zero, ids start at one.
	id := int64(next) + 1

	err = r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(nameKey(username))
		if err == nil {
			return fmt.Errorf("%w: username already exists", apperrors.ErrConflict)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return putUser(txn, &user.User{ID: id, Username: username, PasswordHash: passwordHash})
	})
	if err != nil {
		return 0, translateBadger(err)
	}
	return id, nil
}

func (r *BadgerRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var u *user.User
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		u, err = getByName(txn, username)
		return err
	})
	if err != nil {
		return nil, translateBadger(err)
	}
	return u, nil
}

func (r *BadgerRepo) UpdateUsername(ctx context.Context, oldUsername, newUsername string) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var u *user.User
	err := r.db.Update(func(txn *badger.Txn) error {
		var err error
		u, err = getByName(txn, oldUsername)
		if err != nil || oldUsername == newUsername {
			return err
		}

		_, err = txn.Get(nameKey(newUsername))
		if err == nil {
			return fmt.Errorf("%w: username already exists", apperrors.ErrConflict)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Delete(nameKey(oldUsername)); err != nil {
			return err
		}
		u.Username = newUsername
		return putUser(txn, u)
	})
	if err != nil {
		return nil, translateBadger(err)
	}
	return u, nil
}

func (r *BadgerRepo) UpdatePasswordHash(ctx context.Context, username, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		u, err := getByName(txn, username)
		if err != nil {
			return err
		}
		u.PasswordHash = passwordHash
		return putUser(txn, u)
	})
	return translateBadger(err)
}

func putUser(txn *badger.Txn, u *user.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := txn.Set(idKey(u.ID), raw); err != nil {
		return err
	}
	return txn.Set(nameKey(u.Username), binary.BigEndian.AppendUint64(nil, uint64(u.ID)))
}

func getByName(txn *badger.Txn, username string) (*user.User, error) {
	item, err := txn.Get(nameKey(username))
	if err != nil {
		return nil, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	if len(raw) != 8 {
		return nil, fmt.Errorf("corrupt username index for %q", username)
	}
	return getByID(txn, int64(binary.BigEndian.Uint64(raw)))
}

func getByID(txn *badger.Txn, id int64) (*user.User, error) {
	item, err := txn.Get(idKey(id))
	if err != nil {
		return nil, err
	}
	var u user.User
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &u)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func translateBadger(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return fmt.Errorf("%w: user", apperrors.ErrNotFound)
	case errors.Is(err, badger.ErrConflict):
		// Another transaction touched the same username concurrently.
		return fmt.Errorf("%w: username already exists", apperrors.ErrConflict)
	case errors.Is(err, apperrors.ErrConflict):
		return err
	default:
		return fmt.Errorf("badger: %w", err)
	}
}
