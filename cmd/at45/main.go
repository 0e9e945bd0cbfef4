package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/gentam/at45"
	"github.com/spf13/cobra"
)

var (
	spidevPath string
	pageSize   int
	showStatus bool
)

var rootCmd = &cobra.Command{
	Use:   "at45",
	Short: "Identify and configure Adesto AT45 DataFlash chips over spidev",
	Long: `at45 identifies an Adesto AT45-family DataFlash chip on a Linux SPI
device node by its JEDEC ID, optionally reprograms the page-size mode
(256-byte binary vs. 264-byte standard pages), and optionally prints the
decoded 16-bit status register.

Examples:
  at45 -s                          # identify chip and print status
  at45 -d /dev/spidev1.0 -p 256    # switch to binary page size
  at45 -p 264 -s                   # switch back and verify via status`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	// Show usage for flag mistakes, but not for runtime errors.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		cmd.Println(cmd.UsageString())
		return err
	})
	rootCmd.Flags().StringVarP(&spidevPath, "spidev", "d", at45.DefaultDevicePath, "SPI device node")
	rootCmd.Flags().IntVarP(&pageSize, "pagesize", "p", 0, "page size to configure, 256 or 264 (omit to leave unchanged)")
	rootCmd.Flags().BoolVarP(&showStatus, "status", "s", false, "print the decoded status register")
}

func run(cmd *cobra.Command, args []string) error {
	var size at45.PageSize
	if pageSize != 0 {
		var err error
		if size, err = at45.ParsePageSize(pageSize); err != nil {
			return err
		}
	}

	d, err := at45.Open(spidevPath)
	if err != nil {
		return err
	}
	defer d.Close()

	id, name, err := d.Flash.ReadID()
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("no supported chip found (id = 0x%08X)", id)
	}
	color.New(color.Bold).Printf("Found %s", name)
	fmt.Printf(" (0x%08X)\n", id)

	configured := false
	if pageSize != 0 {
		if err := d.Flash.SetPageSize(size); err != nil {
			return err
		}
		fmt.Printf("Page size set to %s bytes\n", size)
		configured = true
	}

	if showStatus {
		if configured {
			// The chip applies the configuration asynchronously; give
			// it time so the status read reflects the new mode.
			time.Sleep(d.Flash.SettleTime())
		}
		sr, err := d.Flash.ReadStatusRegister()
		if err != nil {
			return err
		}
		printStatus(sr)
	}

	return nil
}

func printStatus(sr at45.StatusRegister) {
	fmt.Printf("Status: %04X\n", uint16(sr))
	for bit := 15; bit >= 0; bit-- {
		descr := sr.DescribeBit(bit)
		if sr.Bit(bit) == 1 {
			switch bit {
			case 13: // erase/program error
				descr = color.RedString("%s", descr)
			case 8, 9, 10: // suspended operations
				descr = color.YellowString("%s", descr)
			}
		}
		fmt.Printf("\t[%02d]: %d = %s\n", bit, sr.Bit(bit), descr)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
