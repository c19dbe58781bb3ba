package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"impostor/internal/config"
	"impostor/internal/db"
	"impostor/internal/logging"
	"impostor/internal/server"
)

func newCmd() *cobra.Command {
	cfg := &config.Config{}

	cmd := &cobra.Command{
		Use:           "impostor",
		Short:         "Game server for Impostor, a word party game with one liar at the table.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.BindEnv(cmd.Flags()); err != nil {
				return err
			}
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logging.New(cfg.LogLevel, cfg.LogJSON)
			if err != nil {
				return err
			}
			log.WithField("version", releaseVersion).Info("starting impostor")
			return server.Run(cmd.Context(), *cfg, log)
		},
	}
	cfg.Flags(cmd.Flags())

	cmd.AddCommand(newWordsCmd())

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("impostor v{{.Version}}\n")

	return cmd
}

// newWordsCmd manages the PostgreSQL word bank. Running servers pick up
// changes on their next start.
func newWordsCmd() *cobra.Command {
	var dsn string
	var database *db.DB

	cmd := &cobra.Command{
		Use:   "words",
		Short: "Manage the word bank stored in PostgreSQL",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.BindEnv(cmd.Flags()); err != nil {
				return err
			}
			if dsn == "" {
				return fmt.Errorf("--database-url (or %s_DATABASE_URL) is required", config.EnvPrefix)
			}
			log, err := logging.New("warn", false)
			if err != nil {
				return err
			}
			d, err := db.Connect(cmd.Context(), dsn, log)
			if err != nil {
				return err
			}
			if err := d.Migrate(cmd.Context()); err != nil {
				d.Close()
				return err
			}
			database = d
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return database.Close()
		},
	}
	cmd.PersistentFlags().StringVar(&dsn, "database-url", "", "PostgreSQL connection string (env: IMPOSTOR_DATABASE_URL)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every category and word",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			words, err := database.LoadWords(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tWORD")
			for _, w := range words {
				fmt.Fprintf(tw, "%s\t%s\n", w.Category, w.Word)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add CATEGORY WORD",
		Short: "Add a word to the bank",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			added, err := database.AddWord(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "%s/%s already exists\n", args[0], args[1])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s/%s\n", args[0], args[1])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove CATEGORY WORD",
		Short: "Remove a word from the bank",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := database.RemoveWord(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("%s/%s not found", args[0], args[1])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s/%s\n", args[0], args[1])
			return nil
		},
	})

	return cmd
}
