package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Zohaasad/file-verse/pkg/ofs"
	"github.com/Zohaasad/file-verse/pkg/ofsconfig"
	"github.com/Zohaasad/file-verse/pkg/ofsnet"
)

var flagPort int

func init() {
	serveCmd.Flags().IntVar(&flagPort, "port", 0, "override the configured TCP port")
}

var serveCmd = &cobra.Command{
	Use:   "serve CONTAINER",
	Short: "Mount a container and serve it over the network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, srvCfg, err := ofsconfig.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagPort != 0 {
			srvCfg.Port = flagPort
		}

		inst, err := ofs.Init(args[0], cfg, log)
		if err != nil {
			log.Errorf("%v", err)
			return err
		}
		defer inst.Shutdown()

		dispatcher := ofs.NewDispatcher(inst, srvCfg.MaxConns)
		defer dispatcher.Close()

		addr := fmt.Sprintf(":%d", srvCfg.Port)
		srv, err := ofsnet.NewServer(addr, dispatcher, srvCfg.QueueTimeout, log)
		if err != nil {
			log.Errorf("%v", err)
			return err
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sig
			log.Infof("shutting down")
			srv.Close()
		}()

		log.Infof("serving %s on %s", args[0], srv.Addr())
		if err := srv.Serve(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Errorf("%v", err)
			return err
		}
		return nil
	},
}
