// Command scrcpymaskd is the process entrypoint: it loads configuration,
// opens the controller TCP listener and the gin HTTP server, and wires
// every internal package together behind internal/api.Server.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/akichase/scrcpy-mask/internal/api"
	"github.com/akichase/scrcpy-mask/internal/config"
	"github.com/akichase/scrcpy-mask/internal/controller"
	"github.com/akichase/scrcpy-mask/internal/logging"
	"github.com/akichase/scrcpy-mask/internal/mapping"
	"github.com/akichase/scrcpy-mask/internal/registry"
)

func main() {
	root := &cobra.Command{
		Use:   "scrcpymaskd",
		Short: "scrcpy-mask control-plane daemon",
		RunE:  runServe,
	}
	root.Flags().String("data-dir", "", "override the platform data directory")
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	logging.Init()

	boot, err := config.LoadBootstrap()
	if err != nil {
		return fmt.Errorf("load bootstrap config: %w", err)
	}
	if override, _ := cmd.Flags().GetString("data-dir"); override != "" {
		boot.DataDir = override
	}
	if boot.DataDir == "" {
		boot.DataDir = defaultDataDir()
	}

	cfgStore, err := config.Open(boot.DataDir, config.Default(boot))
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}

	mappingStore, err := mapping.NewStore(filepath.Join(boot.DataDir, "mapping"))
	if err != nil {
		return fmt.Errorf("open mapping store: %w", err)
	}

	reg := registry.New()
	server := api.NewServer(cfgStore, reg, mappingStore)

	ctrlMgr := controller.NewManager(reg, server.Hooks())

	c := cfgStore.Get()
	ctrlLn, err := net.Listen("tcp", fmt.Sprintf(":%d", c.ControllerPort))
	if err != nil {
		return fmt.Errorf("listen controller port %d: %w", c.ControllerPort, err)
	}
	listener := controller.NewListener(ctrlLn, ctrlMgr)
	server.Attach(ctrlMgr, listener)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := listener.Serve(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("controller listener stopped")
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	server.RegisterRoutes(r)

	httpSrv := &http.Server{Addr: fmt.Sprintf(":%d", c.WebPort), Handler: r}
	go func() {
		log.Info().Uint16("port", c.WebPort).Msg("web server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("web server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "com.akichase.scrcpy-mask")
}
