package main

import (
	"context"
	"crypto/tls"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/stlalpha/mudnet/internal/config"
	"github.com/stlalpha/mudnet/internal/engine"
	"github.com/stlalpha/mudnet/internal/logging"
	"github.com/stlalpha/mudnet/internal/netio"
	"github.com/stlalpha/mudnet/internal/protocol"
	"github.com/stlalpha/mudnet/internal/render"
	"github.com/stlalpha/mudnet/internal/telnet"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logging.DebugEnabled = *debug

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	eng, tlsWatcher, err := buildEngine(cfg)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer eng.Close()
	if tlsWatcher != nil {
		defer tlsWatcher.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("mudnet starting")
	if err := eng.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("FATAL: engine stopped: %v", err)
	}
	logging.Info("mudnet shutting down")
}

// buildEngine registers every listener named in cfg.Net.Listeners,
// failing fast per spec.md §6 ("Failure to bind a listener ... is a
// fatal startup error").
func buildEngine(cfg config.Config) (*engine.Engine, *config.TLSWatcher, error) {
	hostKey, err := protocol.GenerateHostKey()
	if err != nil {
		return nil, nil, err
	}

	eng, err := engine.New(engine.DefaultConfig(), telnet.DefaultPolicy(), render.Plain{}, hostKey)
	if err != nil {
		return nil, nil, err
	}

	var tlsConf *tls.Config
	var tlsWatcher *config.TLSWatcher
	if cfg.Net.Listeners.HasTLS() {
		tlsWatcher, err = config.NewTLSWatcher(cfg.Net.TLS)
		if err != nil {
			return nil, nil, err
		}
		tlsConf = &tls.Config{GetCertificate: tlsWatcher.GetCertificate}
	}

	listeners := []struct {
		addr string
		kind netio.ProtocolKind
		tls  bool
	}{
		{cfg.Net.Listeners.PlainTelnet, netio.ProtocolTelnet, false},
		{cfg.Net.Listeners.TLSTelnet, netio.ProtocolTelnet, true},
		{cfg.Net.Listeners.PlainWebSocket, netio.ProtocolWebSocket, false},
		{cfg.Net.Listeners.TLSWebSocket, netio.ProtocolWebSocket, true},
		{cfg.Net.Listeners.SSH, netio.ProtocolSSH, false},
	}

	for _, l := range listeners {
		if l.addr == "" {
			continue
		}
		kind := netio.Plain
		var lc *tls.Config
		if l.tls {
			kind = netio.TLS
			lc = tlsConf
		}
		if err := eng.AddListener(l.addr, l.kind, kind, lc); err != nil {
			return nil, nil, err
		}
		logging.Info("listening for %s on %s", l.kind, l.addr)
	}

	return eng, tlsWatcher, nil
}
