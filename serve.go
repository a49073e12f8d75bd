package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/buffos/go-reflections/internal/server"
	"github.com/buffos/go-reflections/internal/session"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serve runs the web app until ctx is cancelled.
func serve(ctx context.Context, cfg *viper.Viper) error {
	exp, err := newExporter(cfg)
	if err != nil {
		return err
	}
	sessions := session.NewManager(cfg.GetDuration("session-ttl"), logger)

	ln, err := net.Listen("tcp", cfg.GetString("addr"))
	if err != nil {
		return fmt.Errorf("reflections: listening on %s: %w", cfg.GetString("addr"), err)
	}
	url := "http://" + ln.Addr().String()

	srv := &http.Server{
		Handler:           server.New(sessions, exp, cfg.GetInt("export-cache"), logger),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go sessions.Run(ctx)

	if cfg.GetBool("mdns") {
		port := ln.Addr().(*net.TCPAddr).Port
		responder, err := server.Advertise(port)
		if err != nil {
			logger.WithError(err).Warn("not advertising on the local network")
		} else {
			defer responder.Shutdown()
			logger.WithFields(logrus.Fields{"service": server.ServiceType, "port": port}).Info("advertising on the local network")
		}
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	logger.WithFields(logrus.Fields{
		"addr":          ln.Addr().String(),
		"image-backend": exp.Backend,
		"session-ttl":   cfg.GetDuration("session-ttl"),
	}).Infof("listening on %s", url)

	if cfg.GetBool("open") {
		if err := open.Run(url); err != nil {
			logger.WithError(err).Warn("could not open the browser")
		}
	}

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("reflections: serving: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("reflections: shutting down: %w", err)
	}
	return nil
}

// discover prints every server found on the local network.
func discover(cmd *cobra.Command, timeout time.Duration) error {
	logger.WithField("timeout", timeout).Info("looking for servers on the local network")
	n := 0
	err := server.Discover(timeout, func(name, addr string) {
		n++
		fmt.Fprintf(cmd.OutOrStdout(), "%s\thttp://%s\n", name, addr)
	})
	if err != nil {
		return err
	}
	if n == 0 {
		logger.Info("no servers found")
	}
	return nil
}
