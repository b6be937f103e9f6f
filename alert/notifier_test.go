package alert

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type FakeMailer struct {
	subjects []string
}

func (f *FakeMailer) SendToAll(_ context.Context, subject, _ string) error {
	f.subjects = append(f.subjects, subject)
	return nil
}

func TestNotifier_NotifyError(t *testing.T) {
	mailer := &FakeMailer{}
	notifier := NewNotifier(mailer, 2*time.Minute)

	sent := notifier.NotifyError(context.Background(), errors.New("fetch failed"))
	assert.True(t, sent)
	assert.Len(t, mailer.subjects, 1)
	assert.Equal(t, "Monitor Error", mailer.subjects[0])
}

func TestNotifier_NotifyError_givenRepeatedErrors_thenSuppressed(t *testing.T) {
	mailer := &FakeMailer{}
	notifier := NewNotifier(mailer, 2*time.Minute)

	assert.True(t, notifier.NotifyError(context.Background(), errors.New("fetch failed")))
	assert.False(t, notifier.NotifyError(context.Background(), errors.New("fetch failed again")))
	assert.False(t, notifier.NotifyError(context.Background(), errors.New("and again")))
	assert.Len(t, mailer.subjects, 1)
}

func TestNotifier_NotifyError_givenElapsedWindow_thenSentAgain(t *testing.T) {
	mailer := &FakeMailer{}
	notifier := NewNotifier(mailer, 50*time.Millisecond)

	assert.True(t, notifier.NotifyError(context.Background(), errors.New("fetch failed")))
	assert.False(t, notifier.NotifyError(context.Background(), errors.New("fetch failed")))
	time.Sleep(60 * time.Millisecond)
	assert.True(t, notifier.NotifyError(context.Background(), errors.New("fetch failed")))
	assert.Len(t, mailer.subjects, 2)
}
