package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"plz-territory-go/internal/auth"
	"plz-territory-go/internal/client"
)

const (
	envServer   = "PLZCTL_SERVER"
	envPassword = "PLZCTL_PASSWORD"
)

var (
	server     string
	password   string
	timeout    time.Duration
	verbose    bool
	exportPath string
)

var rootCmd = &cobra.Command{
	Use:          "plzctl",
	Short:        "Manage PLZ region assignments on a territory server",
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var repsCmd = &cobra.Command{
	Use:   "reps",
	Short: "List representatives",
	Args:  cobra.NoArgs,
	RunE: withClient(false, func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) error {
		names, err := c.Representatives(ctx)
		if err != nil {
			return err
		}
		printLines(cmd, names)
		return nil
	}),
}

var regionsCmd = &cobra.Command{
	Use:   "regions <name>",
	Short: "List regions held by a representative",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(false, func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) error {
		codes, err := c.RegionsFor(ctx, args[0])
		if err != nil {
			return err
		}
		printLines(cmd, codes)
		return nil
	}),
}

var unassignedCmd = &cobra.Command{
	Use:   "unassigned",
	Short: "List regions without a representative",
	Args:  cobra.NoArgs,
	RunE: withClient(false, func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) error {
		codes, err := c.UnassignedRegions(ctx)
		if err != nil {
			return err
		}
		printLines(cmd, codes)
		return nil
	}),
}

var assignCmd = &cobra.Command{
	Use:   "assign <name> <code>...",
	Short: "Assign regions to a representative, creating it if needed",
	Args:  cobra.MinimumNArgs(2),
	RunE: withClient(true, func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) error {
		result, err := c.Assign(ctx, args[0], args[1:])
		if err != nil {
			return err
		}
		if result.Created {
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", result.Representative.Name, result.Representative.Color)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "assigned %d region(s) to %s\n", len(result.Assigned), result.Representative.Name)
		if len(result.Ignored) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "ignored unknown: %s\n", strings.Join(result.Ignored, ", "))
		}
		return nil
	}),
}

var setRegionsCmd = &cobra.Command{
	Use:   "set-regions <name> <code>...",
	Short: "Replace the region set of a representative",
	Args:  cobra.MinimumNArgs(2),
	RunE: withClient(true, func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) error {
		result, err := c.SetRegions(ctx, args[0], args[1:])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s now holds %d region(s), %d released\n",
			result.Representative.Name, len(result.Assigned), len(result.Unassigned))
		return nil
	}),
}

var unassignCmd = &cobra.Command{
	Use:   "unassign <code>...",
	Short: "Remove the representative from regions",
	Args:  cobra.MinimumNArgs(1),
	RunE: withClient(true, func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) error {
		n, err := c.Unassign(ctx, args)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "unassigned %d region(s)\n", n)
		return nil
	}),
}

var renameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a representative",
	Args:  cobra.ExactArgs(2),
	RunE: withClient(true, func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) error {
		rep, err := c.Rename(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s\n", args[0], rep.Name)
		return nil
	}),
}

var colorCmd = &cobra.Command{
	Use:   "color <name> <#rrggbb>",
	Short: "Change a representative's map color",
	Args:  cobra.ExactArgs(2),
	RunE: withClient(true, func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) error {
		rep, err := c.SetColor(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", rep.Name, rep.Color)
		return nil
	}),
}

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a representative and release its regions",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(true, func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) error {
		deleted, err := c.Delete(ctx, args[0])
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Fprintf(cmd.OutOrStdout(), "no representative named %s\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	}),
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed regions from the server's boundary data",
	Args:  cobra.NoArgs,
	RunE: withClient(true, func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) error {
		resp, err := c.Seed(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "inserted %d of %d region(s)\n", resp.Inserted, resp.Total)
		return nil
	}),
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download all assignments as an .xlsx workbook",
	Args:  cobra.NoArgs,
	RunE: withClient(true, func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) error {
		data, err := c.Export(ctx)
		if err != nil {
			return err
		}
		if err := os.WriteFile(exportPath, data, 0o644); err != nil {
			return fmt.Errorf("error writing %s: %w", exportPath, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", exportPath)
		return nil
	}),
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	Long:  `The hash-password command runs offline and prints a bcrypt hash that the server accepts in ADMIN_PASSWORD_HASH instead of a plain ADMIN_PASSWORD.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return fmt.Errorf("error hashing password: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

type clientFunc func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) error

// withClient builds a client for the command and logs in first when admin is set
func withClient(admin bool, fn clientFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		logger := zap.NewNop()
		if verbose {
			var err error
			if logger, err = zap.NewDevelopment(); err != nil {
				return fmt.Errorf("error creating logger: %w", err)
			}
		}

		c := client.NewClient(server, logger)
		if admin {
			if password == "" {
				return fmt.Errorf("admin password required: use --password or %s", envPassword)
			}
			if err := c.Login(ctx, password); err != nil {
				return fmt.Errorf("error logging in: %w", err)
			}
		}
		return fn(ctx, c, cmd, args)
	}
}

func printLines(cmd *cobra.Command, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&server, "server", "s", envOr(envServer, "http://localhost:8080"), "territory server URL")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", os.Getenv(envPassword), "admin password")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log HTTP calls")

	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "vertriebsgebiete.xlsx", "output file")

	rootCmd.AddCommand(repsCmd, regionsCmd, unassignedCmd, assignCmd, setRegionsCmd, unassignCmd,
		renameCmd, colorCmd, deleteCmd, seedCmd, exportCmd, hashPasswordCmd)
}
