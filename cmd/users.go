package cmd

import (
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List and inspect account users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, err := client.UsersTable(cmd.Context())
		if err != nil && !partialOK(err) {
			return err
		}
		tbl, ferr := applyFilter(tbl, listFilter)
		if ferr != nil {
			return ferr
		}
		renderTable(cmd.OutOrStdout(), tbl, "id", "username", "email", "userType", "accountStatus")
		return err
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get USER_ID",
	Short: "Print a user as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := client.GetUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, user)
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd, usersGetCmd)

	usersListCmd.Flags().StringVarP(&listFilter, "filter", "f", "", "filter expression or @name")
}
