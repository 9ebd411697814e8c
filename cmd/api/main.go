package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/nereus-labs/datanft-gateway/internal/adapter"
	"github.com/nereus-labs/datanft-gateway/internal/api/rest"
	"github.com/nereus-labs/datanft-gateway/internal/api/server"
	"github.com/nereus-labs/datanft-gateway/internal/aquarius"
	"github.com/nereus-labs/datanft-gateway/internal/config"
	"github.com/nereus-labs/datanft-gateway/internal/consume"
	"github.com/nereus-labs/datanft-gateway/internal/ddo"
	"github.com/nereus-labs/datanft-gateway/internal/domain"
	"github.com/nereus-labs/datanft-gateway/internal/holdings"
	"github.com/nereus-labs/datanft-gateway/internal/ledger"
	"github.com/nereus-labs/datanft-gateway/internal/logger"
	"github.com/nereus-labs/datanft-gateway/internal/provider"
	"github.com/nereus-labs/datanft-gateway/internal/publish"
	"github.com/nereus-labs/datanft-gateway/internal/subgraph"
	"github.com/nereus-labs/datanft-gateway/internal/txbuilder"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadGatewayConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "datanft-gateway",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting DataNFT gateway")

	// Connect to the chain RPC
	clock := adapter.NewClock()
	dialer := adapter.NewEthClientDialer()
	ethClient, err := dialer.Dial(ctx, cfg.Ocean.RPCURL)
	if err != nil {
		logger.Fatal("Failed to dial RPC", zap.Error(err), zap.String("rpc_url", cfg.Ocean.RPCURL))
	}
	defer ethClient.Close()

	ledgerClient, err := ledger.NewClient(cfg.Ocean.ChainID, ethClient, clock)
	if err != nil {
		logger.Fatal("Failed to create ledger client", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to chain",
		zap.Uint64("chain_id", cfg.Ocean.ChainID),
	)

	// Shared outbound HTTP client
	httpClient := adapter.NewHTTPClient(cfg.HTTP.Timeout)

	// External service clients
	aquariusClient := aquarius.NewClient(httpClient, cfg.Ocean.AquariusURL)
	providerClient := provider.NewClient(httpClient, cfg.Ocean.ProviderURL)
	subgraphClient := subgraph.NewClient(httpClient, cfg.Ocean.SubgraphURL)

	// Transaction builder bound to the deployed contract set
	builder, err := txbuilder.NewBuilder(ledgerClient, txbuilder.Addresses{
		NFTFactory: common.HexToAddress(cfg.Ocean.NFTFactoryAddress),
		Dispenser:  common.HexToAddress(cfg.Ocean.DispenserAddress),
		OceanToken: common.HexToAddress(cfg.Ocean.OceanTokenAddress),
	})
	if err != nil {
		logger.Fatal("Failed to create transaction builder", zap.Error(err))
	}

	// Flow orchestrators
	codec := ddo.NewCodec(cfg.Ocean.ChainID, cfg.Ocean.ProviderURL, clock)
	publisher := publish.NewOrchestrator(codec, providerClient, aquariusClient, builder, cfg.Ocean.ChainID, cfg.Ocean.ProviderURL)
	consumer := consume.NewOrchestrator(ledgerClient, aquariusClient, providerClient, subgraphClient, builder,
		common.HexToAddress(cfg.Ocean.DispenserAddress), cfg.Ocean.ChainID)

	// Holdings discovery with its probe cache
	probeCache := expirable.NewLRU[string, domain.AssetLink](cfg.Discovery.CacheSize, nil, cfg.Discovery.CacheTTL)
	scanner := holdings.NewScanner(ledgerClient, probeCache, cfg.Discovery.LookbackBlocks, cfg.Discovery.ProbeConcurrency)

	// Create server config
	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	handler := rest.NewHandler(publisher, consumer, scanner, aquariusClient, cfg.Ocean.ChainID)
	srv := server.New(serverConfig, handler)

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Gateway stopped")
}
