package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/surveyarr/qualtrics"
)

var (
	listCategory     string
	listOwner        string
	listCSV          string
	importOneByOne   bool
	contactsLanguage string
	unsubscribed     bool
)

var listsCmd = &cobra.Command{
	Use:     "lists",
	Aliases: []string{"mailinglists"},
	Short:   "List and manage mailing lists and their contacts",
}

var listsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mailing lists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, err := client.MailingListsTable(cmd.Context())
		if err != nil && !partialOK(err) {
			return err
		}
		tbl, ferr := applyFilter(tbl, listFilter)
		if ferr != nil {
			return ferr
		}
		renderTable(cmd.OutOrStdout(), tbl, "id", "name", "category", "libraryId")
		return err
	},
}

var listsFindCmd = &cobra.Command{
	Use:   "find SEARCH",
	Short: "Print the id of the only mailing list whose name contains SEARCH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := client.FindMailingListID(cmd.Context(), args[0])
		if err != nil {
			return explainMatch(cmd, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var listsCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a mailing list, optionally importing contacts from a CSV file",
	Long: `Create a mailing list. With --csv the file's rows are imported as contacts.
The file needs an email column; firstName, lastName, externalReference,
unsubscribed and language are recognised case-insensitively and any other
column becomes embedded data.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := qualtrics.CreateMailingListParams{
			Name:     args[0],
			Category: listCategory,
			Owner:    listOwner,
			Format:   formatOptions(),
		}
		if listCSV != "" {
			rows, err := readCSVFile(listCSV)
			if err != nil {
				return fmt.Errorf("failed to read contacts: %w", err)
			}
			params.Contacts = rows
		}

		id, err := client.CreateMailingList(cmd.Context(), params)
		if id != "" {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		if err != nil {
			return err
		}
		logger.Info().Str("list", id).Msg("Mailing list created")
		return nil
	},
}

var listsContactsCmd = &cobra.Command{
	Use:   "contacts LIST_ID",
	Short: "List the contacts of a mailing list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, err := client.ContactsTable(cmd.Context(), args[0])
		if err != nil && !partialOK(err) {
			return err
		}
		tbl, ferr := applyFilter(tbl, listFilter)
		if ferr != nil {
			return ferr
		}
		renderTable(cmd.OutOrStdout(), tbl, "id", "email", "firstName", "lastName", "unsubscribed")
		return err
	},
}

var listsImportCmd = &cobra.Command{
	Use:   "import LIST_ID FILE",
	Short: "Import contacts from a CSV file into a mailing list",
	Args:  cobra.ExactArgs(2),
	RunE:  runListsImport,
}

var listsDeleteCmd = &cobra.Command{
	Use:   "delete LIST_ID",
	Short: "Delete a mailing list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := confirm(fmt.Sprintf("Delete mailing list %s?", args[0]))
		if err != nil || !ok {
			return err
		}
		if err := client.DeleteMailingList(cmd.Context(), args[0]); err != nil {
			return err
		}
		logger.Info().Str("list", args[0]).Msg("Mailing list deleted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listsCmd)
	listsCmd.AddCommand(listsListCmd, listsFindCmd, listsCreateCmd, listsContactsCmd, listsImportCmd, listsDeleteCmd)

	listsListCmd.Flags().StringVarP(&listFilter, "filter", "f", "", "filter expression or @name")
	listsContactsCmd.Flags().StringVarP(&listFilter, "filter", "f", "", "filter expression or @name")

	listsCreateCmd.Flags().StringVar(&listCategory, "category", "", "mailing list category")
	listsCreateCmd.Flags().StringVar(&listOwner, "owner", "", "library owning the list (default from config)")
	listsCreateCmd.Flags().StringVar(&listCSV, "csv", "", "CSV file of contacts to import")

	for _, c := range []*cobra.Command{listsCreateCmd, listsImportCmd} {
		c.Flags().StringVar(&contactsLanguage, "language", qualtrics.DefaultLanguage, "default contact language")
		c.Flags().BoolVar(&unsubscribed, "unsubscribed", false, "default unsubscribed flag")
	}
	listsImportCmd.Flags().BoolVar(&importOneByOne, "one-by-one", false, "create contacts individually and report failed rows")

	listsDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip confirmation prompt")
}

func formatOptions() qualtrics.FormatOptions {
	return qualtrics.FormatOptions{Unsubscribed: unsubscribed, Language: contactsLanguage}
}

func runListsImport(cmd *cobra.Command, args []string) error {
	listID, path := args[0], args[1]
	rows, err := readCSVFile(path)
	if err != nil {
		return fmt.Errorf("failed to read contacts: %w", err)
	}

	if !importOneByOne {
		importID, err := client.CreateContactsBulk(cmd.Context(), listID, rows, formatOptions())
		if err != nil {
			return err
		}
		logger.Info().Str("list", listID).Str("import", importID).Int("rows", rows.Len()).Msg("Contact import started")
		fmt.Fprintln(cmd.OutOrStdout(), importID)
		return nil
	}

	result, err := client.AddRecordsToMailingList(cmd.Context(), listID, rows, formatOptions())
	if err != nil {
		return err
	}

	logger.Info().Int("added", len(result.Added)).Int("failed", len(result.Failed)).Msg("Contacts imported")
	if len(result.Failed) == 0 {
		return nil
	}

	w := newTableWriter(cmd.OutOrStdout())
	w.AppendHeader([]any{"row", "email", "error"})
	for _, f := range result.Failed {
		w.AppendRow([]any{f.Row, f.Email, f.Err.Error()})
	}
	w.Render()
	return fmt.Errorf("%d of %d contacts failed", len(result.Failed), rows.Len())
}
