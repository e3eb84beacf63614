package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Charile333/TGBOT/internal/replyfmt"
	"github.com/Charile333/TGBOT/internal/subject"
)

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <domain>",
		Short: "Print the leak report for a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := subject.Normalize(args[0])
			if !subject.IsValidDomain(domain) {
				return fmt.Errorf("invalid domain: %q", args[0])
			}
			client, err := leakRadarFromViper(quietLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			summary, err := client.DomainSummary(cmd.Context(), domain)
			if err != nil {
				return errors.New(replyfmt.ErrorText(err))
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), replyfmt.DomainSummary(domain, summary))
			return nil
		},
	}
}
