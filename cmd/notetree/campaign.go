package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/ammiranda/notetree/internal/app"
	"github.com/ammiranda/notetree/models"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewCampaignCmd creates the campaign command group
func NewCampaignCmd(a **app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Create, list and remove campaigns",
	}
	cmd.AddCommand(newCampaignCreateCmd(a), newCampaignListCmd(a), newCampaignRmCmd(a))
	return cmd
}

func newCampaignCreateCmd(a **app.App) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			campaign, err := (*a).Service.CreateCampaign(cmd.Context(), &models.CreateCampaignRequest{
				Title:       args[0],
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created campaign %s (%s)\n", color.New(color.Bold).Sprint(campaign.Title), campaign.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Campaign description")
	return cmd
}

func newCampaignListCmd(a **app.App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List campaigns",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			campaigns, err := (*a).Service.ListCampaigns(cmd.Context())
			if err != nil {
				return err
			}
			if len(campaigns) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No campaigns yet. Create one with: notetree campaign create <title>")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tNOTES\tCREATED")
			for _, c := range campaigns {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.ID, c.Title, c.NoteCount, c.CreatedAt.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}
}

func newCampaignRmCmd(a **app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm [campaign-id]",
		Short: "Delete a campaign and all of its notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).Service.DeleteCampaign(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted campaign %s\n", args[0])
			return nil
		},
	}
}
