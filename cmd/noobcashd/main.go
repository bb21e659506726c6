// Package main provides noobcashd, a single node in a permissioned
// proof-of-work blockchain network.
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/noobcash/noobcash-go/internal/api"
	"github.com/noobcash/noobcash-go/internal/config"
	"github.com/noobcash/noobcash-go/internal/driver"
	"github.com/noobcash/noobcash-go/internal/node"
	"github.com/noobcash/noobcash-go/pkg/logging"
)

var version = "0.1.0-dev"

func main() {
	cfg, err := config.Load(os.Args[1:], "")
	if err != nil {
		logging.Fatal("failed to parse configuration", "error", err)
	}

	logLevel := "info"
	if cfg.Verbose {
		logLevel = "debug"
	}
	log := logging.New(&logging.Config{Level: logLevel, TimeFormat: time.TimeOnly})
	logging.SetDefault(log)

	nodeCfg := node.Config{
		IP:         cfg.IP(),
		Port:       cfg.Port,
		Capacity:   cfg.Capacity,
		Difficulty: cfg.Difficulty,
		NNodes:     cfg.Nodes,
		Debug:      cfg.Debug,
	}

	var n *node.Node
	if cfg.IsBootstrap() {
		n, err = node.NewBootstrap(nodeCfg)
	} else {
		n, err = node.NewPeer(nodeCfg)
	}
	if err != nil {
		log.Fatal("failed to create node", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := api.NewServer(n)
	addr := nodeCfg.IP + ":" + strconv.Itoa(nodeCfg.Port)
	if err := server.Start(addr); err != nil {
		log.Fatal("failed to start api server", "error", err)
	}

	if !cfg.IsBootstrap() {
		if err := n.RegisterWithBootstrap(ctx, cfg.Bootstrap); err != nil {
			log.Fatal("failed to register with bootstrap", "error", err)
		}
	}

	go n.RunMiningLoop(ctx)

	if cfg.Transactions != "" {
		go func() {
			if err := driver.Run(ctx, n, cfg.Transactions); err != nil {
				log.Error("transaction driver failed", "error", err)
			}
		}()
	}

	printBanner(log, n, addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("error stopping api server", "error", err)
	}

	log.Info("goodbye")
}

func printBanner(log *logging.Logger, n *node.Node, addr string) {
	role := "peer"
	if n.IsBootstrap() {
		role = "bootstrap"
	}
	log.Info("noobcash node started", "version", version, "role", role, "addr", addr, "capacity", n.Capacity(), "difficulty", n.Difficulty())
}

