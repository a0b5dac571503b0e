package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go.aimuz.me/camrec/audiocapture"
	"go.aimuz.me/camrec/videocapture"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List microphones and probe cameras",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		probe, _ := cmd.Flags().GetInt("probe-cameras")

		fmt.Fprintln(out, "Cameras:")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  INDEX\tSIZE\tFPS")
		for i := range probe {
			cam, err := videocapture.Open(i)
			if errors.Is(err, videocapture.ErrUnsupported) {
				fmt.Fprintln(w, "  (camera support not built in)")
				break
			}
			if err != nil {
				continue
			}
			size, fps := cam.Size(), cam.FPS()
			_ = cam.Close()
			fmt.Fprintf(w, "  %d\t%dx%d\t%.1f\n", i, size.X, size.Y, fps)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Fprintln(out, "Microphones:")
		mics, err := audiocapture.Devices()
		if err != nil {
			return err
		}
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  INDEX\tNAME\tHOST API\tCHANNELS\tRATE")
		for _, d := range mics {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%d\t%.0f\n", d.Index, d.Name, d.HostAPI, d.InputChannels, d.DefaultSampleRate)
		}
		return w.Flush()
	},
}

func init() {
	devicesCmd.Flags().Int("probe-cameras", 4, "number of camera indexes to probe")
	rootCmd.AddCommand(devicesCmd)
}
