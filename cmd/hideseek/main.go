package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cbodonnell/hideseek/pkg/api"
	"github.com/cbodonnell/hideseek/pkg/chain"
	"github.com/cbodonnell/hideseek/pkg/chain/evm"
	"github.com/cbodonnell/hideseek/pkg/chain/memory"
	"github.com/cbodonnell/hideseek/pkg/chain/relayer"
	"github.com/cbodonnell/hideseek/pkg/config"
	"github.com/cbodonnell/hideseek/pkg/game"
	"github.com/cbodonnell/hideseek/pkg/log"
	"github.com/cbodonnell/hideseek/pkg/orchestrators"
	"github.com/cbodonnell/hideseek/pkg/repositories"
	"github.com/cbodonnell/hideseek/pkg/status"
	"github.com/cbodonnell/hideseek/pkg/telemetry"
	"github.com/cbodonnell/hideseek/pkg/version"
	"github.com/cbodonnell/hideseek/pkg/workers"
	"golang.org/x/sync/errgroup"
)

type backend struct {
	reader  chain.ReadOnlyContract
	signers game.SignerFactory
	fhe     chain.FHEService
	close   func()
}

func main() {
	port := flag.Int("port", 9090, "port to listen on")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting hideseek version %s", version.Get())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	shutdownTracing, err := telemetry.Setup(ctx, "hideseek", cfg.OTELEndpoint)
	if err != nil {
		panic(fmt.Sprintf("Failed to set up tracing: %v", err))
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error("Failed to shut down tracing: %v", err)
		}
	}()

	chainBackend, err := newBackend(ctx, cfg)
	if err != nil {
		panic(fmt.Sprintf("Failed to create %s chain backend: %v", cfg.Chain, err))
	}
	defer chainBackend.close()

	players, err := repositories.NewRepository(ctx, cfg.PlayersURL, cfg.PlayersMigrations)
	if err != nil {
		panic(fmt.Sprintf("Failed to create players repository: %v", err))
	}
	defer players.Close(ctx)

	ids, err := orchestrators.NewIDGenerator(cfg.IDStrategy)
	if err != nil {
		panic(fmt.Sprintf("Failed to create id generator: %v", err))
	}

	broadcaster := status.NewBroadcaster(status.NewBroadcasterOptions{
		Delays: status.Delays{
			Pending: cfg.StatusPendingDelay,
			Success: cfg.StatusSuccessDelay,
			Error:   cfg.StatusErrorDelay,
		},
	})

	gameManager := game.NewGameManager(game.NewGameManagerOptions{
		Reader:      chainBackend.reader,
		Signers:     chainBackend.signers,
		FHE:         chainBackend.fhe,
		Broadcaster: broadcaster,
		Players:     players,
		IDs:         ids,
	})

	broadcastMessageChannelSize := 100
	broadcastMessageChan := make(chan workers.BroadcastMessage, broadcastMessageChannelSize)
	broadcastMessageWorker := workers.NewBroadcastMessageWorker(workers.NewBroadcastMessageWorkerOptions{
		BroadcastMessageChan: broadcastMessageChan,
	})

	refreshChan := make(chan struct{}, 1)
	refreshWorker := workers.NewRefreshWorker(workers.NewRefreshWorkerOptions{
		Refresher:   gameManager,
		RefreshChan: refreshChan,
		Interval:    cfg.RefreshInterval,
	})

	apiServerOpts := api.NewAPIServerOptions{
		Port:        *port,
		Game:        gameManager,
		Streams:     broadcastMessageWorker,
		PublishChan: broadcastMessageChan,
		RefreshChan: refreshChan,
	}
	tlsCertFile := os.Getenv("HIDESEEK_API_TLS_CERT_FILE")
	tlsKeyFile := os.Getenv("HIDESEEK_API_TLS_KEY_FILE")
	if tlsCertFile != "" && tlsKeyFile != "" {
		apiServerOpts.TLS = &api.TLSConfig{
			CertFile: tlsCertFile,
			KeyFile:  tlsKeyFile,
		}
	}
	server := api.NewAPIServer(apiServerOpts)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		broadcastMessageWorker.Start(gctx)
		return nil
	})
	g.Go(func() error {
		refreshWorker.Start(gctx)
		return nil
	})
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Stop(stopCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error: %v", err)
	}
}

func newBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.Chain {
	case config.ChainMemory:
		contract := memory.NewContract(memory.NewContractOptions{Address: cfg.ContractAddress})
		wallet := contract.SignerFor(cfg.WalletAddress)
		address, _ := contract.Address(ctx)
		log.Info("Using in-memory chain at %s for wallet %s", address, cfg.WalletAddress)
		return &backend{
			reader: contract,
			signers: func(address string) (chain.SignerContract, error) {
				if !strings.EqualFold(address, cfg.WalletAddress) {
					return nil, fmt.Errorf("no signer for wallet %s", address)
				}
				return wallet, nil
			},
			fhe:   memory.NewFHE(contract),
			close: func() {},
		}, nil
	case config.ChainEVM:
		client, err := evm.NewClient(ctx, evm.NewClientOptions{
			RPCURL:          cfg.RPCURL,
			ContractAddress: cfg.ContractAddress,
			PrivateKey:      cfg.PrivateKey,
			ChainID:         cfg.ChainID,
		})
		if err != nil {
			return nil, err
		}
		return &backend{
			reader: client,
			signers: func(address string) (chain.SignerContract, error) {
				if !strings.EqualFold(address, client.SignerAddress()) {
					return nil, fmt.Errorf("wallet %s does not match the configured key", address)
				}
				return client, nil
			},
			fhe:   relayer.NewClient(relayer.NewClientOptions{BaseURL: cfg.RelayerURL}),
			close: client.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown chain backend %q", cfg.Chain)
	}
}
