package cli

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	groupListJSON bool
	groupDocsJSON bool
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage document groups",
	Long: `Groups partition the document corpus by topic. The group description
is what the router classifies queries against, so write it the way a
user would describe the questions the group answers.`,
}

var groupCreateCmd = &cobra.Command{
	Use:   "create NAME DESCRIPTION",
	Short: "Create a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if groupService == nil {
			return errors.New("group service not configured")
		}

		group, err := groupService.CreateGroup(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		cmd.Printf("Created group %d: %s\n", group.ID, group.Name)
		return nil
	},
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if groupService == nil {
			return errors.New("group service not configured")
		}

		groups, err := groupService.ListGroups(cmd.Context())
		if err != nil {
			return err
		}

		if groupListJSON {
			return printJSON(cmd, groups)
		}

		if len(groups) == 0 {
			cmd.Println("No groups. Create one with: corpora group create NAME DESCRIPTION")
			return nil
		}
		for _, g := range groups {
			cmd.Printf("%d\t%s\t%s\n", g.ID, g.Name, g.Description)
		}
		return nil
	},
}

var groupDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a group and everything in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if groupService == nil {
			return errors.New("group service not configured")
		}

		id, err := parseGroupID(args[0])
		if err != nil {
			return err
		}

		if err := groupService.DeleteGroup(cmd.Context(), id); err != nil {
			return err
		}

		cmd.Printf("Deleted group %d\n", id)
		return nil
	},
}

var groupDocsCmd = &cobra.Command{
	Use:   "docs ID",
	Short: "List documents in a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if groupService == nil {
			return errors.New("group service not configured")
		}

		id, err := parseGroupID(args[0])
		if err != nil {
			return err
		}

		docs, err := groupService.ListDocuments(cmd.Context(), id)
		if err != nil {
			return err
		}

		if groupDocsJSON {
			return printJSON(cmd, docs)
		}

		if len(docs) == 0 {
			cmd.Println("No documents in this group.")
			return nil
		}
		for _, d := range docs {
			cmd.Printf("%s\t%s\t%s\t%s\n", d.ID, d.Filename, d.Status, d.UploadedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	groupListCmd.Flags().BoolVar(&groupListJSON, "json", false, "output as JSON")
	groupDocsCmd.Flags().BoolVar(&groupDocsJSON, "json", false, "output as JSON")

	groupCmd.AddCommand(groupCreateCmd)
	groupCmd.AddCommand(groupListCmd)
	groupCmd.AddCommand(groupDeleteCmd)
	groupCmd.AddCommand(groupDocsCmd)
	rootCmd.AddCommand(groupCmd)
}

func parseGroupID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, errors.New("group ID must be a number")
	}
	return id, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}
