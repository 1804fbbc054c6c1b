package main

import (
	"github.com/spf13/cobra"

	"github.com/Zohaasad/file-verse/pkg/ofs"
	"github.com/Zohaasad/file-verse/pkg/ofsconfig"
)

var formatCmd = &cobra.Command{
	Use:   "format CONTAINER",
	Short: "Create a new OMNIFS container on disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := ofsconfig.Load(flagConfig)
		if err != nil {
			return err
		}

		if err := ofs.Format(args[0], cfg); err != nil {
			log.Errorf("%v", err)
			return err
		}

		log.Infof("formatted %s: %d bytes, %d-byte blocks, %d max files, %d max users",
			args[0], cfg.TotalSize, cfg.BlockSize, cfg.MaxFiles, cfg.MaxUsers)
		return nil
	},
}
