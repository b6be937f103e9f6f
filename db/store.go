package db

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/alphadrop/airdrop-monitor/domain"
	"github.com/cockroachdb/pebble/v2"
	"github.com/pkg/errors"
)

const reminderStatusKeyPrefix = "ars:"

type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(storeDir string) (*PebbleStore, error) {
	db, err := pebble.Open(filepath.Join(storeDir, "airdrop-monitor-internal-store"), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening pebble db: %v", err)
	}

	return &PebbleStore{db: db}, nil
}

func reminderStatusKey(contractAddress string) []byte {
	return []byte(reminderStatusKeyPrefix + contractAddress)
}

// SetReminderStatus upserts the full record in one atomic synced write.
func (ps *PebbleStore) SetReminderStatus(status *domain.ReminderStatus) error {
	value, err := json.Marshal(status)
	if err != nil {
		return errors.Wrapf(err, "marshalling reminder status for [%s]", status.ContractAddress)
	}

	err = ps.db.Set(reminderStatusKey(status.ContractAddress), value, pebble.Sync)
	if err != nil {
		return errors.Wrapf(err, "setting reminder status for [%s]", status.ContractAddress)
	}

	return nil
}

func (ps *PebbleStore) GetReminderStatus(contractAddress string) (*domain.ReminderStatus, error) {
	value, closer, err := ps.db.Get(reminderStatusKey(contractAddress))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, domain.ErrStoreEntityNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting reminder status for [%s]", contractAddress)
	}
	defer func(closer io.Closer) {
		err := closer.Close()
		if err != nil {
			log.Printf("[ERROR] closing db: %v", err)
		}
	}(closer)

	var status domain.ReminderStatus
	err = json.Unmarshal(value, &status)
	if err != nil {
		return nil, errors.Wrapf(err, "unmarshalling reminder status for [%s]", contractAddress)
	}

	return &status, nil
}

func (ps *PebbleStore) DeleteReminderStatus(contractAddress string) error {
	err := ps.db.Delete(reminderStatusKey(contractAddress), pebble.Sync)
	if err != nil {
		return errors.Wrapf(err, "deleting reminder status for [%s]", contractAddress)
	}
	return nil
}

// ForEachReminderStatus calls fn for every stored record. Returning an
// error from fn stops the iteration.
func (ps *PebbleStore) ForEachReminderStatus(fn func(status *domain.ReminderStatus) error) error {
	iter, err := ps.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(reminderStatusKeyPrefix),
		UpperBound: []byte(reminderStatusKeyPrefix + "\xff"),
	})
	if err != nil {
		return errors.Wrap(err, "creating iterator")
	}
	defer func() {
		err := iter.Close()
		if err != nil {
			log.Printf("[ERROR] closing iterator: %v", err)
		}
	}()

	for iter.First(); iter.Valid(); iter.Next() {
		var status domain.ReminderStatus
		err = json.Unmarshal(iter.Value(), &status)
		if err != nil {
			return errors.Wrapf(err, "unmarshalling reminder status for key [%s]", iter.Key())
		}
		err = fn(&status)
		if err != nil {
			return err
		}
	}

	return iter.Error()
}

func (ps *PebbleStore) Close() error {
	return ps.db.Close()
}
