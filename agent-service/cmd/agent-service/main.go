package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/admission"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/audit"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/clients/catalog"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/config"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/evaluation"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/gateway"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/httpserver"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/metrics"
	"github.com/ILLUVRSE/VendorCatalog/pkg/logging"
)

const agentVersion = "1.0.0"

func main() {
	cfg, err := config.LoadAgent()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	gw, err := gateway.New(gateway.Config{
		BaseURL: cfg.ModelRunnerURL,
		Model:   cfg.Model,
		Timeout: cfg.ModelTimeout,
		Metrics: m,
	})
	if err != nil {
		log.Fatalf("model gateway: %v", err)
	}

	ctx := context.Background()
	var recorders audit.MultiRecorder
	var publisher evaluation.Publisher
	var closers []func()

	if cfg.MongoURL != "" {
		mongoRec, err := audit.ConnectMongo(ctx, cfg.MongoURL, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			log.Printf("mongo audit disabled: %v", err)
		} else {
			recorders = append(recorders, mongoRec)
			closers = append(closers, func() { _ = mongoRec.Close(context.Background()) })
		}
	}
	if cfg.S3Bucket != "" {
		archiver, err := audit.NewS3Archiver(ctx, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			log.Printf("s3 archive disabled: %v", err)
		} else {
			recorders = append(recorders, archiver)
		}
	}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := audit.NewKafkaPublisher(audit.KafkaPublisherConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		if err != nil {
			log.Printf("kafka events disabled: %v", err)
		} else {
			publisher = kp
			closers = append(closers, func() { _ = kp.Close() })
		}
	}

	sinks := evaluation.Sinks{Publisher: publisher}
	if len(recorders) > 0 {
		sinks.Recorder = recorders
	}
	pipeline := evaluation.New(gw, evaluation.NewSeededParser(cfg.FallbackSeed), sinks, evaluation.Config{
		Threshold:         cfg.EvaluationThreshold,
		AgentVersion:      agentVersion,
		SideEffectTimeout: cfg.SideEffectTimeout,
		Logger:            logger,
		Metrics:           m,
	})
	controller := admission.New(catalog.New(cfg.CatalogURL, cfg.CatalogTimeout), admission.Config{
		Threshold: cfg.AcceptanceThreshold,
		Logger:    logger,
		Metrics:   m,
	})
	server := httpserver.New(pipeline, controller, gw, httpserver.Config{
		RequestTimeout: cfg.ModelTimeout + cfg.CatalogTimeout + 15*time.Second,
		Gatherer:       reg,
		Logger:         logger,
	})

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.Router(),
	}

	go func() {
		log.Printf("Agent service listening on %s (model runner %s, model %s, threshold %d)",
			cfg.Addr, gw.CompletionURL(), cfg.Model, cfg.EvaluationThreshold)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	waitForShutdown(httpServer)
	pipeline.Wait()
	for _, closeFn := range closers {
		closeFn()
	}
}

func waitForShutdown(srv *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
