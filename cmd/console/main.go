package main

import (
	"context"
	"fmt"
	"os"

	"dispatch-console/internal/domain/repository"
	"dispatch-console/internal/infrastructure/config"
	"dispatch-console/internal/infrastructure/persistence"
	"dispatch-console/internal/interface/api"
	repo "dispatch-console/internal/interface/repository"
	"dispatch-console/internal/usecase"
	"dispatch-console/pkg/logger"
	"dispatch-console/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
)

// app holds the components shared by every command
type app struct {
	cfg      *config.Config
	log      logger.Logger
	metrics  *metrics.Metrics
	client   *api.Client
	store    *usecase.Store
	ids      *usecase.TransactionIDs
	outbox   *usecase.Outbox
	importer *usecase.Importer
	service  *usecase.ScheduleService
	closers  []func()
}

func newApp(ctx context.Context) (*app, error) {
	log := logger.NewLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		metrics: metrics.NewMetrics("dispatch_console", prometheus.DefaultRegisterer),
	}

	a.client, err = api.NewClient(cfg.APIBaseURL, cfg.APITimeout, log.With("component", "api"))
	if err != nil {
		return nil, err
	}

	var registry repository.TransactionIDRegistry
	if cfg.RedisAddr != "" {
		rdb, err := persistence.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn("Redis unavailable, transaction IDs checked locally only", "error", err)
		} else {
			registry = repo.NewRedisTransactionIDRegistry(rdb, cfg.TransactionTTL)
			a.closers = append(a.closers, func() { rdb.Close() })
		}
	}

	sender, err := a.notifier()
	if err != nil {
		return nil, err
	}

	a.store = usecase.NewStore(a.client, a.metrics, log.With("component", "store"))
	a.ids = usecase.NewTransactionIDs(registry, log.With("component", "txid"))

	var publisher usecase.Publisher
	if sender != nil {
		a.outbox = usecase.NewOutbox(sender, cfg.OutboxSize, cfg.OutboxWorkers, a.metrics, log.With("component", "outbox"))
		publisher = a.outbox
	}

	a.importer = usecase.NewImporter(a.client, a.client, a.ids, a.store, publisher,
		cfg.Company, cfg.Location(), a.metrics, log.With("component", "importer"))
	a.service = usecase.NewScheduleService(a.client, a.store, a.ids, a.metrics, log.With("component", "service"))
	return a, nil
}

// notifier builds the configured notification transport; nil disables it
func (a *app) notifier() (repository.NotificationRepository, error) {
	switch a.cfg.Notifier {
	case "whatsapp":
		if a.cfg.WhatsAppEndpoint == "" {
			a.log.Warn("WHATSAPP_ENDPOINT not set, notifications disabled")
			return nil, nil
		}
		return repo.NewWhatsappRepository(a.cfg.WhatsAppEndpoint, a.cfg.WhatsAppToken,
			a.cfg.WhatsAppCompanyID, a.cfg.WhatsAppAgentID, a.log.With("component", "whatsapp")), nil
	case "amqp":
		conn, err := amqp.Dial(a.cfg.RabbitMQURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		a.closers = append(a.closers, func() { conn.Close() })
		return repo.NewAMQPNotifier(conn, a.cfg.RabbitMQQueue, a.log.With("component", "amqp"))
	default:
		return nil, nil
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func main() {
	var a *app

	root := &cobra.Command{
		Use:           "console",
		Short:         "Dispatch console: import bookings, watch the board, drive statuses",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(cmd.Context())
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.close()
			}
		},
	}

	appRef := func() *app { return a }
	root.AddCommand(
		newWatchCmd(appRef),
		newImportCmd(appRef),
		newBoardCmd(appRef),
		newStatusCmd(appRef),
		newAdvanceCmd(appRef),
		newTransferCmd(appRef),
		newDeleteCmd(appRef),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
