package main

import (
	"github.com/spf13/cobra"

	"github.com/Zohaasad/file-verse/pkg/ofs"
)

var flagRepair bool

func init() {
	fsckCmd.Flags().BoolVar(&flagRepair, "repair", false, "clear dangling slots and rewrite the bitmap to match reachability")
}

var fsckCmd = &cobra.Command{
	Use:   "fsck CONTAINER",
	Short: "Check a container for leaked blocks, corrupt blocks, and dangling metadata slots",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := ofs.Fsck(args[0], flagRepair)
		if err != nil {
			log.Errorf("%v", err)
			return err
		}

		log.Infof("leaked blocks:   %d", len(report.LeakedBlocks))
		log.Infof("corrupt blocks:  %d", len(report.CorruptBlocks))
		log.Infof("dangling slots:  %d", len(report.DanglingSlots))
		if flagRepair {
			log.Infof("repaired: %t", report.Repaired)
		}
		return nil
	},
}
