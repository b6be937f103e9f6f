package kafka

import (
	"context"
	"encoding/json"

	"github.com/alphadrop/airdrop-monitor/domain"
	"github.com/pkg/errors"
	"github.com/twmb/franz-go/pkg/kgo"
)

type ReminderProducer struct {
	kcl *kgo.Client
}

func NewReminderProducer(client *kgo.Client) *ReminderProducer {
	return &ReminderProducer{
		kcl: client,
	}
}

func (p *ReminderProducer) SendMessage(ctx context.Context, event *domain.ReminderEvent) error {
	record, err := createRecord(event)
	if err != nil {
		return err
	}
	// reminders are rare, synchronous produce keeps the ordering simple
	if err = p.kcl.ProduceSync(ctx, record).FirstErr(); err != nil {
		return errors.Wrap(err, "failed to produce record")
	}
	return nil
}

func createRecord(event *domain.ReminderEvent) (*kgo.Record, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrapf(err, "marshalling to json")
	}

	return &kgo.Record{
		Key:   []byte(event.ContractAddress),
		Value: payload,
	}, nil
}
