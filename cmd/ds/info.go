package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	deepseek "github.com/hunjixin/deepseek-api"
)

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models available to the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.client().Models(cmd.Context())
			if err != nil {
				return err
			}
			t := newTable("MODEL", "OWNER", "LIMITS AND PRICING")
			for _, m := range list.Data {
				details := "-"
				if info, ok := deepseek.Model(m.ID).Info(); ok {
					details = info.String()
				}
				t.Row(m.ID, m.OwnedBy, details)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

func newBalanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the account balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.client().Balance(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if b.IsAvailable {
				fmt.Fprintln(out, "Balance sufficient for API calls")
			} else {
				fmt.Fprintln(out, "Balance insufficient for API calls")
			}
			t := newTable("CURRENCY", "TOTAL", "GRANTED", "TOPPED UP")
			for _, info := range b.BalanceInfos {
				t.Row(info.Currency, info.TotalBalance, info.GrantedBalance, info.ToppedUpBalance)
			}
			fmt.Fprintln(out, t.Render())
			return nil
		},
	}
}

func newTable(headers ...string) *table.Table {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}
