package db

import (
	"os"
	"testing"

	"github.com/alphadrop/airdrop-monitor/domain"
	"github.com/stretchr/testify/require"
)

func TestPebbleStore_SetAndGetReminderStatus(t *testing.T) {

	tempDir, err := os.MkdirTemp("", "reminder_store_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewPebbleStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	status := &domain.ReminderStatus{
		ContractAddress: "0xabc",
		ChainID:         "56",
		ClaimEndTime:    1700000000000,
		TenMinuteSent:   true,
	}
	err = store.SetReminderStatus(status)
	require.NoError(t, err)

	retrieved, err := store.GetReminderStatus("0xabc")
	require.NoError(t, err)
	require.Equal(t, status, retrieved)
}

func TestPebbleStore_GetReminderStatusNotSet(t *testing.T) {

	tempDir, err := os.MkdirTemp("", "reminder_store_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewPebbleStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.GetReminderStatus("0xunknown")
	require.Error(t, err)
	require.Equal(t, domain.ErrStoreEntityNotFound, err)
}

func TestPebbleStore_UpdateReminderStatus(t *testing.T) {

	tempDir, err := os.MkdirTemp("", "reminder_store_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewPebbleStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	status := &domain.ReminderStatus{
		ContractAddress: "0xabc",
		ChainID:         "56",
		ClaimEndTime:    1700000000000,
	}
	err = store.SetReminderStatus(status)
	require.NoError(t, err)

	status.TenMinuteSent = true
	status.FiveMinuteSent = true
	err = store.SetReminderStatus(status)
	require.NoError(t, err)

	retrieved, err := store.GetReminderStatus("0xabc")
	require.NoError(t, err)
	require.True(t, retrieved.TenMinuteSent)
	require.True(t, retrieved.FiveMinuteSent)
	require.False(t, retrieved.OneMinuteSent)
}

func TestPebbleStore_DeleteReminderStatus(t *testing.T) {

	tempDir, err := os.MkdirTemp("", "reminder_store_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewPebbleStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	err = store.SetReminderStatus(&domain.ReminderStatus{ContractAddress: "0xabc"})
	require.NoError(t, err)

	err = store.DeleteReminderStatus("0xabc")
	require.NoError(t, err)

	_, err = store.GetReminderStatus("0xabc")
	require.Equal(t, domain.ErrStoreEntityNotFound, err)
}

func TestPebbleStore_ForEachReminderStatus(t *testing.T) {

	tempDir, err := os.MkdirTemp("", "reminder_store_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewPebbleStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	for _, address := range []string{"0xaaa", "0xbbb", "0xccc"} {
		err = store.SetReminderStatus(&domain.ReminderStatus{ContractAddress: address})
		require.NoError(t, err)
	}

	var seen []string
	err = store.ForEachReminderStatus(func(status *domain.ReminderStatus) error {
		seen = append(seen, status.ContractAddress)
		return nil
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"0xaaa", "0xbbb", "0xccc"}, seen)
}
