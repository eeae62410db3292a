package main

import (
	"chat-sync/domain"
	"chat-sync/repositories"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the history cached on disk",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config, log, db, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		list, found, err := repositories.NewHistoryRepository(db, log, config.HistoryKey).GetHistory()
		if err != nil {
			return fmt.Errorf("could not read history: %w", err)
		}
		if !found {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No history cached yet")
			return nil
		}
		renderHistory(cmd.OutOrStdout(), list)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func renderHistory(out io.Writer, list domain.MessageList) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Time", "Author", "Kind", "Content"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, m := range list.Ordered() {
		at := "pending"
		if m.CreatedAt != nil {
			at = m.CreatedAt.Local().Format(time.DateTime)
		}
		content := m.Text()
		if m.Body.Kind() == domain.KindAttachment {
			content = m.AttachmentRef()
		}
		table.Append([]string{at, m.Author, string(m.Body.Kind()), content})
	}
	table.Render()
}
