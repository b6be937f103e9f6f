package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/alphadrop/airdrop-monitor/domain"
	"github.com/alphadrop/airdrop-monitor/metrics"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	tenMinutesMs  int64 = 10 * 60 * 1000
	fiveMinutesMs int64 = 5 * 60 * 1000
	oneMinuteMs   int64 = 60 * 1000
)

type CatalogClient interface {
	GetAirdrops(ctx context.Context) ([]domain.Airdrop, error)
	GetTokenInfo(ctx context.Context, chainID, contractAddress string) (*domain.TokenInfo, error)
}

type DataStore interface {
	GetReminderStatus(contractAddress string) (*domain.ReminderStatus, error)
	SetReminderStatus(status *domain.ReminderStatus) error
	DeleteReminderStatus(contractAddress string) error
	ForEachReminderStatus(fn func(status *domain.ReminderStatus) error) error
}

type Notifier interface {
	SendToAll(ctx context.Context, subject, content string) error
}

type Publisher interface {
	SendMessage(ctx context.Context, event *domain.ReminderEvent) error
}

type ErrorReporter interface {
	NotifyError(ctx context.Context, err error) bool
}

type Config struct {
	Interval      time.Duration
	RetentionDays int // 0 keeps records forever
}

type threshold struct {
	minutes  int
	limitMs  int64
	wasSent  func(status *domain.ReminderStatus) bool
	markSent func(status *domain.ReminderStatus)
}

// checked in ascending order: after an outage several thresholds can be
// crossed at once and all of them must fire in one cycle, 10m first.
var thresholds = []threshold{
	{
		minutes:  10,
		limitMs:  tenMinutesMs,
		wasSent:  func(status *domain.ReminderStatus) bool { return status.TenMinuteSent },
		markSent: func(status *domain.ReminderStatus) { status.TenMinuteSent = true },
	},
	{
		minutes:  5,
		limitMs:  fiveMinutesMs,
		wasSent:  func(status *domain.ReminderStatus) bool { return status.FiveMinuteSent },
		markSent: func(status *domain.ReminderStatus) { status.FiveMinuteSent = true },
	},
	{
		minutes:  1,
		limitMs:  oneMinuteMs,
		wasSent:  func(status *domain.ReminderStatus) bool { return status.OneMinuteSent },
		markSent: func(status *domain.ReminderStatus) { status.OneMinuteSent = true },
	},
}

type ReminderProcessor struct {
	catalogClient     CatalogClient
	dataStore         DataStore
	notifier          Notifier
	publisher         Publisher // optional, may be nil
	errorReporter     ErrorReporter
	config            Config
	processingMetrics *metrics.ProcessingMetrics
	logger            *zap.SugaredLogger
}

func NewReminderProcessor(store DataStore, client CatalogClient, notifier Notifier, publisher Publisher,
	reporter ErrorReporter, config Config, m *metrics.ProcessingMetrics, logger *zap.SugaredLogger) *ReminderProcessor {

	return &ReminderProcessor{
		catalogClient:     client,
		dataStore:         store,
		notifier:          notifier,
		publisher:         publisher,
		errorReporter:     reporter,
		config:            config,
		processingMetrics: m,
		logger:            logger,
	}
}

// Start polls the catalog until the process exits. One cycle runs to
// completion before the next one starts.
func (p *ReminderProcessor) Start() {
	for {
		err := p.RunCycle()
		if err != nil {
			p.logger.Errorw("processing cycle failed", "error", err)
			if p.errorReporter != nil {
				p.errorReporter.NotifyError(context.Background(), err)
			}
		}
		time.Sleep(p.config.Interval)
	}
}

// RunCycle processes one catalog snapshot. A catalog fetch failure
// aborts the whole cycle without touching any state; a failure on one
// airdrop aborts only that airdrop.
func (p *ReminderProcessor) RunCycle() error {
	ctx := context.Background()

	airdrops, err := p.catalogClient.GetAirdrops(ctx)
	if err != nil {
		p.processingMetrics.IncFetchErrors()
		return errors.Wrap(err, "fetching airdrop catalog")
	}
	p.processingMetrics.SetSourceAirdrops(len(airdrops))

	// one timestamp for the whole cycle
	now := time.Now().UnixMilli()

	for _, airdrop := range airdrops {
		err = p.processAirdrop(ctx, now, airdrop)
		if err != nil {
			p.logger.Errorw("processing airdrop failed",
				"contractAddress", airdrop.ContractAddress, "error", err)
		}
	}

	if p.config.RetentionDays > 0 {
		err = p.sweepExpired(now)
		if err != nil {
			p.logger.Errorw("retention sweep failed", "error", err)
		}
	}

	p.processingMetrics.IncProcessedCycles()
	return nil
}

func (p *ReminderProcessor) processAirdrop(ctx context.Context, now int64, airdrop domain.Airdrop) error {
	status, err := p.dataStore.GetReminderStatus(airdrop.ContractAddress)
	if errors.Is(err, domain.ErrStoreEntityNotFound) {
		// the claim end time is frozen at first observation
		status = &domain.ReminderStatus{
			ContractAddress: airdrop.ContractAddress,
			ChainID:         airdrop.ChainID,
			ClaimEndTime:    airdrop.ClaimEndTime,
		}
		err = p.dataStore.SetReminderStatus(status)
		if err != nil {
			p.processingMetrics.IncStoreErrors()
			return errors.Wrap(err, "creating reminder status")
		}
		p.logger.Infow("tracking new airdrop", "contractAddress", airdrop.ContractAddress,
			"tokenSymbol", airdrop.TokenSymbol, "claimEndTime", airdrop.ClaimEndTime)
	} else if err != nil {
		p.processingMetrics.IncStoreErrors()
		return errors.Wrap(err, "loading reminder status")
	}

	if now > status.ClaimEndTime {
		// claim window is over, nothing left to remind
		return nil
	}

	remaining := status.ClaimEndTime - now
	var due []threshold
	for _, t := range thresholds {
		if remaining <= t.limitMs && !t.wasSent(status) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}

	// enrichment is fetched before the first flag is touched, so a
	// failure here leaves the record unchanged and the reminder fires
	// on the next cycle instead
	tokenInfo, err := p.catalogClient.GetTokenInfo(ctx, airdrop.ChainID, airdrop.ContractAddress)
	if err != nil {
		p.processingMetrics.IncFetchErrors()
		return errors.Wrap(err, "fetching token info")
	}

	for _, t := range due {
		t.markSent(status)
		subject := fmt.Sprintf("Alpha Airdrop %d Minutes Reminder", t.minutes)
		err = p.notifier.SendToAll(ctx, subject, formatReminder(airdrop, tokenInfo))
		if err != nil {
			// the flag stays set: under the dispatch-then-persist
			// ordering a relay outage must not re-fire on every cycle
			p.processingMetrics.IncDispatchErrors()
			p.logger.Errorw("dispatching reminder failed",
				"contractAddress", airdrop.ContractAddress, "minutes", t.minutes, "error", err)
		} else {
			p.processingMetrics.IncSentReminders()
			p.logger.Infow("dispatched reminder",
				"contractAddress", airdrop.ContractAddress, "minutes", t.minutes)
		}
		p.publishEvent(ctx, airdrop, t.minutes, status.ClaimEndTime, now)
	}

	// persisting is the last step: a crash before this point repeats
	// the reminder rather than losing it
	err = p.dataStore.SetReminderStatus(status)
	if err != nil {
		p.processingMetrics.IncStoreErrors()
		return errors.Wrap(err, "persisting reminder status")
	}
	return nil
}

func (p *ReminderProcessor) publishEvent(ctx context.Context, airdrop domain.Airdrop, minutes int, claimEndTime, now int64) {
	if p.publisher == nil {
		return
	}
	event := domain.ReminderEvent{
		ContractAddress:  airdrop.ContractAddress,
		ChainID:          airdrop.ChainID,
		TokenSymbol:      airdrop.TokenSymbol,
		ThresholdMinutes: minutes,
		ClaimEndTime:     claimEndTime,
		SentAt:           now,
	}
	err := p.publisher.SendMessage(ctx, &event)
	if err != nil {
		p.logger.Errorw("publishing reminder event failed",
			"contractAddress", airdrop.ContractAddress, "error", err)
	}
}

// sweepExpired deletes records whose claim deadline is older than the
// configured retention.
func (p *ReminderProcessor) sweepExpired(now int64) error {
	cutoff := now - int64(p.config.RetentionDays)*24*60*60*1000

	var expired []string
	err := p.dataStore.ForEachReminderStatus(func(status *domain.ReminderStatus) error {
		if status.ClaimEndTime < cutoff {
			expired = append(expired, status.ContractAddress)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "listing reminder statuses")
	}

	for _, contractAddress := range expired {
		err = p.dataStore.DeleteReminderStatus(contractAddress)
		if err != nil {
			return errors.Wrapf(err, "deleting reminder status [%s]", contractAddress)
		}
	}
	if len(expired) > 0 {
		p.processingMetrics.AddEvictedRecords(len(expired))
		p.logger.Infow("evicted expired tracking records", "count", len(expired))
	}
	return nil
}

func formatReminder(airdrop domain.Airdrop, tokenInfo *domain.TokenInfo) string {
	return fmt.Sprintf("%s (%s) claim ends at %s.\nAmount: %.2f\nPrice: %s\n\n%s",
		airdrop.ConfigName,
		airdrop.TokenSymbol,
		time.UnixMilli(airdrop.ClaimEndTime).UTC().Format(time.RFC3339),
		airdrop.AirdropAmount,
		tokenInfo.Price,
		tokenInfo.Description,
	)
}
