package main

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Charile333/TGBOT/internal/clifmt"
	"github.com/Charile333/TGBOT/internal/leakradar"
	"github.com/Charile333/TGBOT/internal/replyfmt"
)

func newExportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exports",
		Short: "List recent LeakRadar export jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			size, _ := cmd.Flags().GetInt("limit")
			client, err := leakRadarFromViper(quietLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			page, err := client.ListExports(cmd.Context(), 1, size)
			if err != nil {
				return errors.New(replyfmt.ErrorText(err))
			}
			exportsTable(page).Print(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().Int("limit", leakradar.MaxPageSize, "Number of jobs to list (max 100).")
	return cmd
}

func exportsTable(page leakradar.Page[leakradar.ExportJob]) clifmt.Table {
	t := clifmt.Table{
		Title:     "Export jobs",
		Headers:   []string{"ID", "STATUS", "FINISHED", "FILE"},
		EmptyText: "No export jobs yet",
	}
	for _, job := range page.Items {
		finished := strings.TrimSpace(string(job.FinishedAt))
		if finished == "" {
			finished = "-"
		}
		file := strings.TrimSpace(job.Filename)
		if u := job.DirectURL(); u != "" {
			file = strings.TrimSpace(file + " " + u)
		}
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(job.ID, 10),
			string(job.Status.Normalize()),
			finished,
			file,
		})
	}
	return t
}
