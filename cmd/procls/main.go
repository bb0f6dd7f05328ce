package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/stevedomin/termtable"

	"procctl/process"
)

var (
	nameFlag    string
	pidFlag     uint32
	threadsFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "procls",
	Short: "List running processes from the privileged system snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		enum := newEnumerator()
		infos, err := enum.EnumByNameOrPid(process.ProcessID(pidFlag), nameFlag, threadsFlag)
		if err != nil {
			return err
		}

		t := termtable.NewTable(nil, &termtable.TableOptions{
			Padding:      2,
			UseSeparator: true,
		})
		if threadsFlag {
			t.SetHeader([]string{"PID", "IMAGE", "THREADS", "MAIN TID"})
		} else {
			t.SetHeader([]string{"PID", "IMAGE"})
		}

		for _, info := range infos {
			if threadsFlag {
				mainTid := ""
				for _, th := range info.Threads {
					if th.MainThread {
						mainTid = strconv.Itoa(int(th.TID))
						break
					}
				}
				t.AddRow([]string{
					strconv.Itoa(int(info.PID)),
					info.ImageName,
					strconv.Itoa(len(info.Threads)),
					mainTid,
				})
			} else {
				t.AddRow([]string{strconv.Itoa(int(info.PID)), info.ImageName})
			}
		}

		fmt.Println(t.Render())
		fmt.Printf("%d processes\n", len(infos))
		return nil
	},
}

func main() {
	rootCmd.Flags().StringVar(&nameFlag, "name", "", "Filter by image name (case-insensitive)")
	rootCmd.Flags().Uint32Var(&pidFlag, "pid", 0, "Filter by process id")
	rootCmd.Flags().BoolVar(&threadsFlag, "threads", false, "Include thread information")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
