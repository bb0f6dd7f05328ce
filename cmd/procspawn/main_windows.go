//go:build windows

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"procctl/process"
	"procctl/process_windows"
)

var (
	pathFlag      string
	suspendedFlag bool
	forceInitFlag bool
	cmdLineFlag   string
	workDirFlag   string
	terminateFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "procspawn",
	Short: "Create a process suspended and attach to it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := process.LoadConfig()
		if err != nil {
			return err
		}

		ctl := process_windows.NewWithConfig(cfg)
		defer ctl.Detach()

		opts := process.CreateOptions{
			Suspended: suspendedFlag,
			ForceInit: forceInitFlag,
			CmdLine:   cmdLineFlag,
			WorkDir:   workDirFlag,
		}
		if err := ctl.CreateAndAttach(pathFlag, opts); err != nil {
			return err
		}

		fmt.Printf("Attached to pid %d (valid=%v)\n", ctl.PID(), ctl.Valid())

		if terminateFlag {
			if err := ctl.Terminate(0); err != nil {
				return err
			}
			fmt.Println("Termination requested")
		}
		return nil
	},
}

func main() {
	rootCmd.Flags().StringVar(&pathFlag, "path", "", "Executable path (required)")
	rootCmd.Flags().BoolVar(&suspendedFlag, "suspended", false, "Leave the primary thread suspended")
	rootCmd.Flags().BoolVar(&forceInitFlag, "force-init", true, "Force loader initialization when suspended")
	rootCmd.Flags().StringVar(&cmdLineFlag, "cmdline", "", "Command line for the new process")
	rootCmd.Flags().StringVar(&workDirFlag, "workdir", "", "Startup directory")
	rootCmd.Flags().BoolVar(&terminateFlag, "terminate", false, "Terminate the target before exiting")
	rootCmd.MarkFlagRequired("path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
