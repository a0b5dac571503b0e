package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"go.aimuz.me/camrec/catalog"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage finished recording sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(func(c *catalog.Store) error {
			records, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTARTED\tDURATION\tFRAMES\tSTATUS\tOUTPUT")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
					r.ID,
					r.StartedAt.Local().Format(time.DateTime),
					r.Duration().Round(time.Second),
					r.Frames,
					r.Status,
					r.Output,
				)
			}
			return w.Flush()
		})
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(func(c *catalog.Store) error {
			r, err := c.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		})
	},
}

var sessionsRmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Remove sessions from the catalog (recordings stay on disk)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(func(c *catalog.Store) error {
			for _, id := range args {
				if err := c.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("remove %s: %w", id, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Removed", id)
			}
			return nil
		})
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsRmCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func withCatalog(fn func(*catalog.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir, err := cfg.CatalogPath()
	if err != nil {
		return err
	}
	c, err := catalog.Open(catalog.Options{Dir: dir})
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}
