package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/surveyarr/qualtrics"
	"github.com/s0up4200/surveyarr/table"
)

var (
	linkDays        int
	linkDescription string
	linkType        string
	linksOut        string
)

var distributeCmd = &cobra.Command{
	Use:   "distribute",
	Short: "Distribute surveys to mailing lists",
}

var distributeLinksCmd = &cobra.Command{
	Use:   "links SURVEY_ID LIST_ID",
	Short: "Create personal survey links for every contact of a mailing list",
	Args:  cobra.ExactArgs(2),
	RunE:  runDistributeLinks,
}

func init() {
	rootCmd.AddCommand(distributeCmd)
	distributeCmd.AddCommand(distributeLinksCmd)

	distributeLinksCmd.Flags().IntVar(&linkDays, "days", qualtrics.DefaultLinkExpiryDays, "days until the links expire")
	distributeLinksCmd.Flags().StringVar(&linkDescription, "description", "", "distribution description")
	distributeLinksCmd.Flags().StringVar(&linkType, "type", "Individual", "link type: Individual, Anonymous or Multiple")
	distributeLinksCmd.Flags().StringVarP(&linksOut, "out", "o", "", "write the links to a CSV file instead of printing them")
}

func runDistributeLinks(cmd *cobra.Command, args []string) error {
	links, err := client.CreateLinksForMailingList(cmd.Context(), qualtrics.LinkDistributionParams{
		SurveyID:      args[0],
		MailingListID: args[1],
		DaysToExpiry:  linkDays,
		Description:   linkDescription,
		LinkType:      linkType,
	})
	if err != nil && !partialOK(err) {
		return err
	}

	tbl := table.New("contactId", "email", "firstName", "lastName", "link", "linkExpiration")
	for _, l := range links {
		if aerr := tbl.AddRow(l.ContactID, l.Email, l.FirstName, l.LastName, l.Link, l.LinkExpiration); aerr != nil {
			return aerr
		}
	}

	if linksOut != "" {
		if werr := writeCSVFile(linksOut, tbl); werr != nil {
			return fmt.Errorf("failed to write links: %w", werr)
		}
		logger.Info().Int("links", tbl.Len()).Str("file", linksOut).Msg("Links written")
		return err
	}

	renderTable(cmd.OutOrStdout(), tbl)
	return err
}
