package service

import (
	"testing"

	"iris-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCaretakers(dialer *fakeDialer) (*CaretakerService, *memoryCaretakers, *recordingSpeaker) {
	repo := newMemoryCaretakers()
	speaker := &recordingSpeaker{}
	return NewCaretakerService(repo, speaker, dialer, nullLogger()), repo, speaker
}

func TestAddNumberFillsSlotsInOrder(t *testing.T) {
	svc, repo, speaker := newTestCaretakers(&fakeDialer{allowed: true})

	msg, err := svc.AddNumber(" 111 ")
	require.NoError(t, err)
	assert.Equal(t, "Primary caretaker saved. Now save secondary number.", msg)
	assert.Equal(t, "111", repo.slots[model.SlotPrimary])

	msg, err = svc.AddNumber("222")
	require.NoError(t, err)
	assert.Equal(t, "Secondary caretaker saved successfully.", msg)
	assert.Equal(t, "222", repo.slots[model.SlotBackup])

	msg, err = svc.AddNumber("333")
	assert.ErrorIs(t, err, ErrSlotsFull)
	assert.Equal(t, "You already added both caretaker numbers.", msg)
	assert.Equal(t, "111", repo.slots[model.SlotPrimary])
	assert.Equal(t, "222", repo.slots[model.SlotBackup])

	assert.Len(t, speaker.phrases, 3)
}

func TestAddNumberRejectsEmpty(t *testing.T) {
	svc, repo, speaker := newTestCaretakers(&fakeDialer{})

	_, err := svc.AddNumber("   ")
	assert.ErrorIs(t, err, ErrEmptyNumber)
	assert.Empty(t, repo.slots)
	assert.Empty(t, speaker.phrases)
}

func TestAddNumberRepositoryError(t *testing.T) {
	svc, repo, _ := newTestCaretakers(&fakeDialer{})
	repo.err = errBackend

	_, err := svc.AddNumber("111")
	assert.ErrorIs(t, err, errBackend)
}

func TestUpdateBackup(t *testing.T) {
	svc, repo, _ := newTestCaretakers(&fakeDialer{})

	msg, err := svc.UpdateBackup("999")
	assert.ErrorIs(t, err, ErrNoBackup)
	assert.Equal(t, "No backup caretaker to update", msg)

	repo.slots[model.SlotPrimary] = "111"
	repo.slots[model.SlotBackup] = "222"

	msg, err = svc.UpdateBackup("999")
	require.NoError(t, err)
	assert.Equal(t, "Backup caretaker updated", msg)

	backup, err := svc.BackupNumber()
	require.NoError(t, err)
	assert.Equal(t, "999", backup)
	primary, err := svc.PrimaryNumber()
	require.NoError(t, err)
	assert.Equal(t, "111", primary)
}

func TestCall(t *testing.T) {
	t.Run("no numbers", func(t *testing.T) {
		svc, _, _ := newTestCaretakers(&fakeDialer{allowed: true})
		msg, err := svc.Call()
		assert.ErrorIs(t, err, ErrNoCaretaker)
		assert.Equal(t, "No caretaker number saved", msg)
	})

	t.Run("prefers primary", func(t *testing.T) {
		dialer := &fakeDialer{allowed: true}
		svc, repo, _ := newTestCaretakers(dialer)
		repo.slots[model.SlotPrimary] = "111"
		repo.slots[model.SlotBackup] = "222"

		_, err := svc.Call()
		require.NoError(t, err)
		assert.Equal(t, []string{"tel:111"}, dialer.calls)
	})

	t.Run("falls back to backup", func(t *testing.T) {
		dialer := &fakeDialer{allowed: true}
		svc, repo, _ := newTestCaretakers(dialer)
		repo.slots[model.SlotBackup] = "222"

		_, err := svc.Call()
		require.NoError(t, err)
		assert.Equal(t, []string{"tel:222"}, dialer.calls)
	})

	t.Run("no permission", func(t *testing.T) {
		dialer := &fakeDialer{allowed: false}
		svc, repo, _ := newTestCaretakers(dialer)
		repo.slots[model.SlotPrimary] = "111"

		msg, err := svc.Call()
		assert.ErrorIs(t, err, ErrCallPermission)
		assert.Equal(t, "Call permission not granted", msg)
		assert.Empty(t, dialer.calls)
	})

	t.Run("dial failure", func(t *testing.T) {
		svc, repo, _ := newTestCaretakers(&fakeDialer{allowed: true, err: errBackend})
		repo.slots[model.SlotPrimary] = "111"

		_, err := svc.Call()
		assert.ErrorIs(t, err, errBackend)
	})
}

func TestHandleVoiceCommand(t *testing.T) {
	dialer := &fakeDialer{allowed: true}
	svc, repo, _ := newTestCaretakers(dialer)
	repo.slots[model.SlotPrimary] = "111"

	handled, spoken, err := svc.HandleVoiceCommand("please help me")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{"Calling caretaker"}, spoken)
	assert.Equal(t, []string{"tel:111"}, dialer.calls)

	handled, spoken, err = svc.HandleVoiceCommand("what time is it")
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Nil(t, spoken)
}
