// Async enhancement worker entry point for PhytoTrait-Intelligence.
// Consumes enhancement requests from Kafka, runs them through the
// inference engine, and publishes results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/PhytoTrait-Intelligence/internal/application/enhancement"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/config"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/domain/glossary"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/intelligence/trait_inference"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Fatal("worker exited", logging.Err(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

func run(cfg *config.Config, log logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *prometheus.AppMetrics
	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace: cfg.Metrics.Namespace,
		}, log)
		if err != nil {
			return err
		}
		metrics = prometheus.NewAppMetrics(collector)
	}

	var repo glossary.Repository
	if cfg.Glossary.Source == config.GlossarySourcePostgres {
		conn, err := postgres.NewConnection(cfg.Database, log)
		if err != nil {
			return err
		}
		defer conn.Close()
		repo = repositories.NewPostgresGlossaryRepo(conn, log)
	}

	gls, err := enhancement.LoadGlossary(ctx, cfg.Glossary, repo, metrics, log)
	if err != nil {
		return err
	}

	engine, err := enhancement.BuildEngine(cfg.Engine, gls, nil, metrics, log)
	if err != nil {
		return err
	}

	service, err := enhancement.NewService(engine, gls, enhancement.BatchRunnerConfig(cfg.Batch), metrics, log)
	if err != nil {
		return err
	}

	producer, err := kafka.NewProducer(cfg.Kafka, "worker", log)
	if err != nil {
		return err
	}
	defer producer.Close()

	handler := newRequestHandler(service, producer, metrics, log)

	consumer, err := kafka.NewConsumer(cfg.Kafka, kafka.TopicEnhanceRequest, handler, log,
		kafka.WithDeadLetter(producer))
	if err != nil {
		return err
	}
	defer consumer.Close()

	log.Info("worker started", logging.String("topic", kafka.TopicEnhanceRequest))
	return consumer.Start(ctx)
}

// newRequestHandler processes one enhancement request envelope and
// publishes the outcome.
func newRequestHandler(service enhancement.Service, producer *kafka.Producer, metrics *prometheus.AppMetrics, log logging.Logger) kafka.MessageHandler {
	log = log.Named("worker.handler")

	return func(ctx context.Context, env *kafka.EventEnvelope) error {
		start := time.Now()

		var req kafka.EnhanceRequestPayload
		if err := env.UnmarshalPayload(&req); err != nil {
			return err
		}

		out, err := service.EnhanceJob(ctx, &enhancement.BatchInput{
			Tuples:   req.Tuples,
			Contexts: req.Contexts,
		})
		if err != nil {
			recordMessage(metrics, kafka.TopicEnhanceRequest, "error", time.Since(start))
			if pubErr := publishFailure(ctx, producer, req.JobID, err); pubErr != nil {
				log.Error("failed to publish failure event", logging.Err(pubErr))
			}
			return err
		}

		results := make([]*trait_inference.EnhancedSVO, 0, out.SuccessCount)
		for _, item := range out.Items {
			if item.Result != nil {
				results = append(results, item.Result)
			}
		}
		doc, err := service.Export(results, trait_inference.FormatJSON)
		if err != nil {
			return err
		}

		payload := kafka.EnhanceResultPayload{
			JobID:       req.JobID,
			Processed:   out.SuccessCount,
			Results:     doc,
			CompletedAt: time.Now().UTC(),
		}
		if err := producer.Publish(ctx, kafka.TopicEnhanceResult, req.JobID, kafka.EventTypeEnhanceCompleted, payload); err != nil {
			recordMessage(metrics, kafka.TopicEnhanceRequest, "error", time.Since(start))
			return err
		}

		recordMessage(metrics, kafka.TopicEnhanceRequest, "ok", time.Since(start))
		log.Info("job completed",
			logging.String("job_id", req.JobID),
			logging.Int("succeeded", out.SuccessCount),
			logging.Int("failed", out.FailureCount))
		return nil
	}
}

func publishFailure(ctx context.Context, producer *kafka.Producer, jobID string, cause error) error {
	payload := kafka.EnhanceFailedPayload{
		JobID:    jobID,
		Error:    cause.Error(),
		FailedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return producer.Publish(ctx, kafka.TopicEnhanceResult, jobID, kafka.EventTypeEnhanceFailed, payload)
}

func recordMessage(metrics *prometheus.AppMetrics, topic, status string, elapsed time.Duration) {
	if metrics == nil {
		return
	}
	metrics.MessagesConsumedTotal.WithLabelValues(topic, status).Inc()
	metrics.MessageProcessDuration.WithLabelValues(topic).Observe(elapsed.Seconds())
}
