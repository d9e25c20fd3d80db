package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tdewolff/argp"

	"DesignBoard/internal/config"
	"DesignBoard/internal/editor"
	"DesignBoard/internal/net"
	"DesignBoard/internal/ui"
)

// Launch hosts a board, or joins one when given a share link.
type Launch struct {
	Config   string `short:"c" default:"designboard.toml" desc:"Configuration file"`
	Port     int    `short:"p" desc:"Websocket port, overrides the configuration"`
	Headless bool   `desc:"Host without a window"`
	Discover bool   `short:"d" desc:"Join the first host found on the local network"`
	Link     string `index:"0" desc:"Share link of the host to join"`
}

func main() {
	root := argp.NewCmd(&Launch{}, "DesignBoard canvas editor")
	root.Parse()
	root.PrintHelp()
}

func (cmd *Launch) Run() error {
	cfg, err := config.Load(cmd.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Port != 0 {
		cfg.Port = cmd.Port
	}
	if cmd.Headless {
		cfg.Headless = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	switch {
	case strings.HasPrefix(cmd.Link, cfg.Scheme):
		return runClient(cfg, net.Address(cmd.Link, cfg.Scheme))
	case cmd.Link != "":
		return argp.ShowUsage
	case cmd.Discover:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		addr, err := net.Browse(ctx, cfg.Discovery.Service, 3*time.Second)
		cancel()
		if err != nil {
			return err
		}
		return runClient(cfg, addr)
	}
	return runHost(cfg)
}

func runHost(cfg config.Config) error {
	log.Println("Starting as HOST")
	session, err := editor.New(cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	hub := net.NewHub(session)
	defer hub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		if err := hub.Serve(ctx, cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	if cfg.Discovery.Enabled {
		server, err := net.Advertise(cfg.Discovery.Service, cfg.Port)
		if err != nil {
			log.Printf("[HOST] mDNS advertising disabled: %v", err)
		} else {
			defer server.Shutdown()
		}
	}

	shareLink := cfg.ShareLink(net.HostIP(net.ProbeAddr))
	log.Printf("[HOST] Share link: %s", shareLink)

	if cfg.Headless {
		<-ctx.Done()
		return nil
	}
	ui.RunApp(session, ui.Options{
		Title:     "DesignBoard",
		ShareLink: shareLink,
		ExportDir: cfg.Export.Dir,
		Quality:   cfg.Export.Quality,
	})
	return nil
}

func runClient(cfg config.Config, addr string) error {
	log.Println("Starting as CLIENT")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := net.Dial(ctx, addr)
	cancel()
	if err != nil {
		return err
	}
	defer client.Close()

	go func() {
		for err := range client.Errors() {
			log.Printf("Host rejected command: %v", err)
		}
	}()
	ui.RunApp(client, ui.Options{
		Title:     fmt.Sprintf("DesignBoard (%s)", addr),
		ExportDir: cfg.Export.Dir,
		Quality:   cfg.Export.Quality,
	})
	return nil
}
