package cmd

import (
	"fmt"
	"strings"

	"github.com/highlog/interviewer/internal/store"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect stored interview sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		user, _ := cmd.Flags().GetString("user")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		sessions, err := s.Sessions().List(cmd.Context(), store.ListOpts{UserID: user, Limit: limit})
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}

		fmt.Fprintf(out, "%-36s  %-10s  %-8s  %-12s  %5s  %9s  %s\n",
			"ID", "User", "Level", "Status", "Turns", "Remaining", "Started")
		fmt.Fprintln(out, strings.Repeat(rule, 104))
		for _, ss := range sessions {
			fmt.Fprintf(out, "%-36s  %-10s  %-8s  %-12s  %5d  %8ds  %s\n",
				truncate(ss.ID, 36),
				truncate(ss.UserID, 10),
				ss.Difficulty,
				ss.Status,
				len(ss.Log),
				ss.RemainingTime,
				ss.CreatedAt.Local().Format("2006-01-02 15:04"),
			)
		}
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session and its transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		sess, err := s.Sessions().Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		printSession(cmd.OutOrStdout(), sess)
		if sess.Report != nil {
			fmt.Fprintln(cmd.OutOrStdout())
			printReport(cmd.OutOrStdout(), sess.ID, sess.Report)
		}
		return nil
	},
}

func init() {
	sessionListCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
	sessionListCmd.Flags().String("user", "", "Only sessions of this user")

	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
}
