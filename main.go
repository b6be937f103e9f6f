package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alphadrop/airdrop-monitor/alert"
	"github.com/alphadrop/airdrop-monitor/binance"
	"github.com/alphadrop/airdrop-monitor/db"
	"github.com/alphadrop/airdrop-monitor/health"
	"github.com/alphadrop/airdrop-monitor/kafka"
	"github.com/alphadrop/airdrop-monitor/mail"
	"github.com/alphadrop/airdrop-monitor/metrics"
	"github.com/alphadrop/airdrop-monitor/sync"
	"github.com/ardanlabs/conf"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "AIRDROP_MONITOR"

func main() {
	if err := run(); err != nil {
		log.Fatalf("main: exited with error: %s", err.Error())
	}
}

func run() error {
	log.SetOutput(os.Stdout) // default is stderr

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] main: no env file found")
	}

	zapConfig := zap.NewProductionConfig()
	// this is just for sugar, to display a readable date instead of an epoch time
	zapConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.DateTime)
	logger, err := zapConfig.Build()
	if err != nil {
		return fmt.Errorf("creating logger: %v", err)
	}
	defer logger.Sync()
	sLogger := logger.Sugar()

	var cfg struct {
		Client struct {
			CatalogUrl   string        `conf:"default:https://www.binance.com/bapi/defi/v1/friendly/wallet-direct/buw/growth/query-alpha-airdrop"`
			TokenInfoUrl string        `conf:"default:https://www.binance.com/bapi/defi/v1/public/wallet-direct/buw/wallet/cex/alpha/token/full/info"`
			PageSize     int           `conf:"default:20"`
			ReadTimeout  time.Duration `conf:"default:20s"`
		}
		Mail struct {
			RelayUrl     string        `conf:"default:https://luckycola.com.cn/tools/customMail"`
			ColaKey      string        `conf:"optional,noprint"`
			SmtpEmail    string        `conf:"optional"`
			SmtpCode     string        `conf:"optional,noprint"`
			SmtpCodeType string        `conf:"default:qq"`
			FromTitle    string        `conf:"default:Alpha Airdrop"`
			Recipients   []string      `conf:"optional"`
			WriteTimeout time.Duration `conf:"default:10s"`
			AlertWindow  time.Duration `conf:"default:2m"`
		}
		Broker struct {
			Enabled          bool     `conf:"default:false"`
			BootstrapServers []string `conf:"default:localhost:9092"`
			ProduceTopic     string   `conf:"default:airdrop-reminders"`
		}
		Sync struct {
			Interval            time.Duration `conf:"default:30s"`
			RetentionDays       int           `conf:"optional"` // 0 keeps records forever
			InternalStoreFolder string        `conf:"default:store"`
			ServerPort          int           `conf:"default:8000"`
			MetricsPort         int           `conf:"default:9999"`
			MetricsNamespace    string        `conf:"default:airdrop_monitor"`
		}
	}

	// load config
	if err := conf.Parse(os.Args[1:], envPrefix, &cfg); err != nil {
		switch {
		case errors.Is(err, conf.ErrHelpWanted):
			usage, err := conf.Usage(envPrefix, &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config usage")
			}
			fmt.Println(usage)
			return nil
		case errors.Is(err, conf.ErrVersionWanted):
			version, err := conf.VersionString(envPrefix, &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config version")
			}
			fmt.Println(version)
			return nil
		}
		return errors.Wrap(err, "parsing config")
	}

	out, err := conf.String(&cfg)
	if err != nil {
		return errors.Wrap(err, "generating config for output")
	}
	log.Printf("main: Config :\n%v\n", out)

	store, err := db.NewPebbleStore(cfg.Sync.InternalStoreFolder)
	if err != nil {
		return errors.Wrap(err, "creating db")
	}
	defer store.Close()

	catalogClient := binance.NewClient(cfg.Client.CatalogUrl, cfg.Client.TokenInfoUrl,
		cfg.Client.PageSize, cfg.Client.ReadTimeout)

	sender := mail.NewSender(mail.Config{
		RelayURL:     cfg.Mail.RelayUrl,
		ColaKey:      cfg.Mail.ColaKey,
		SmtpEmail:    cfg.Mail.SmtpEmail,
		SmtpCode:     cfg.Mail.SmtpCode,
		SmtpCodeType: cfg.Mail.SmtpCodeType,
		FromTitle:    cfg.Mail.FromTitle,
		Recipients:   cfg.Mail.Recipients,
	}, cfg.Mail.WriteTimeout)

	var producer sync.Publisher
	if cfg.Broker.Enabled {
		kafkaMetrics := kprom.NewMetrics(cfg.Sync.MetricsNamespace,
			kprom.Registerer(prometheus.DefaultRegisterer),
			kprom.Gatherer(prometheus.DefaultGatherer))
		kcl, err := kgo.NewClient(
			kgo.WithHooks(kafkaMetrics),
			kgo.SeedBrokers(cfg.Broker.BootstrapServers...),
			kgo.DefaultProduceTopic(cfg.Broker.ProduceTopic),
			kgo.ProducerBatchCompression(kgo.ZstdCompression()),
			kgo.WithLogger(kgo.BasicLogger(os.Stdout, kgo.LogLevelInfo, nil)),
		)
		if err != nil {
			return errors.Wrap(err, "creating kafka client")
		}
		defer kcl.Close()
		producer = kafka.NewReminderProducer(kcl)
	} else {
		log.Println("[WARN] main: reminder event publishing disabled")
	}

	alertNotifier := alert.NewNotifier(sender, cfg.Mail.AlertWindow)
	procMetrics := metrics.NewProcessingMetrics(cfg.Sync.MetricsNamespace)
	processor := sync.NewReminderProcessor(store, catalogClient, sender, producer,
		alertNotifier, sync.Config{
			Interval:      cfg.Sync.Interval,
			RetentionDays: cfg.Sync.RetentionDays,
		}, procMetrics, sLogger)
	go processor.Start()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// status and metrics endpoint
	apiError := make(chan error, 1)
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", health.Health)
		log.Printf("main: Starting server on port [%d].", cfg.Sync.ServerPort)
		apiError <- http.ListenAndServe(fmt.Sprintf(":%d", cfg.Sync.ServerPort), mux)
	}()

	metricsError := make(chan error, 1)
	go func() {
		log.Printf("main: Starting metrics server on port [%d].", cfg.Sync.MetricsPort)
		http.Handle("/metrics", promhttp.Handler())
		metricsError <- http.ListenAndServe(fmt.Sprintf(":%d", cfg.Sync.MetricsPort), nil)
	}()

	log.Println("main: Service started.")

	for {
		select {
		case <-shutdown:
			log.Println("main: Received shutdown signal, shutting down...")
			return nil
		case err := <-metricsError:
			return fmt.Errorf("[ERROR] starting server: %v", err)
		case err := <-apiError:
			return fmt.Errorf("[ERROR] starting server: %v", err)
		}
	}
}
