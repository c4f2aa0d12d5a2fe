package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/s0up4200/surveyarr/qualtrics"
)

var (
	listFilter    string
	copyOwner     string
	activateStart string
	activateEnd   string
	assumeYes     bool
)

var surveysCmd = &cobra.Command{
	Use:     "surveys",
	Aliases: []string{"survey"},
	Short:   "List and manage surveys",
}

var surveysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List surveys",
	Long: `List all surveys visible to the API token.

The --filter flag takes an expression over the listing columns, such as
'isActive and daysSince(lastModified) < 30', or @name for a filter from the
config file.`,
	Args: cobra.NoArgs,
	RunE: runSurveysList,
}

var surveysFindCmd = &cobra.Command{
	Use:   "find SEARCH",
	Short: "Print the id of the only survey whose name contains SEARCH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := client.FindSurveyID(cmd.Context(), args[0])
		if err != nil {
			return explainMatch(cmd, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var surveysGetCmd = &cobra.Command{
	Use:   "get SURVEY_ID",
	Short: "Print a survey definition as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := client.GetSurvey(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, def)
	},
}

var surveysCopyCmd = &cobra.Command{
	Use:   "copy SURVEY_ID NEW_NAME",
	Short: "Copy a survey under a new name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := client.CopySurvey(cmd.Context(), args[0], args[1], copyOwner)
		if err != nil {
			return err
		}
		logger.Info().Str("source", args[0]).Str("survey", id).Msg("Survey copied")
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var surveysDeleteCmd = &cobra.Command{
	Use:   "delete SURVEY_ID",
	Short: "Delete a survey",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := confirm(fmt.Sprintf("Delete survey %s?", args[0]))
		if err != nil || !ok {
			return err
		}
		if err := client.DeleteSurvey(cmd.Context(), args[0]); err != nil {
			return err
		}
		logger.Info().Str("survey", args[0]).Msg("Survey deleted")
		return nil
	},
}

var surveysActivateCmd = &cobra.Command{
	Use:   "activate SURVEY_ID",
	Short: "Activate a survey for a date window",
	Long: `Activate a survey. Without --start and --end the survey is active from now
for 130 days.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var window qualtrics.ActivationWindow
		var err error
		if activateStart != "" {
			if window.Start, err = cast.ToTimeE(activateStart); err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
		}
		if activateEnd != "" {
			if window.End, err = cast.ToTimeE(activateEnd); err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
		}
		if err := client.ActivateSurvey(cmd.Context(), args[0], window); err != nil {
			return err
		}
		logger.Info().Str("survey", args[0]).Msg("Survey activated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(surveysCmd)
	surveysCmd.AddCommand(surveysListCmd, surveysFindCmd, surveysGetCmd, surveysCopyCmd, surveysDeleteCmd, surveysActivateCmd)

	surveysListCmd.Flags().StringVarP(&listFilter, "filter", "f", "", "filter expression or @name")
	surveysCopyCmd.Flags().StringVar(&copyOwner, "owner", "", "owner of the copy (default from config)")
	surveysDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip confirmation prompt")
	surveysActivateCmd.Flags().StringVar(&activateStart, "start", "", "start of the active window (RFC 3339 or YYYY-MM-DD)")
	surveysActivateCmd.Flags().StringVar(&activateEnd, "end", "", "end of the active window")
}

func runSurveysList(cmd *cobra.Command, args []string) error {
	tbl, err := client.SurveysTable(cmd.Context())
	if err != nil && !partialOK(err) {
		return err
	}

	tbl, ferr := applyFilter(tbl, listFilter)
	if ferr != nil {
		return ferr
	}

	renderTable(cmd.OutOrStdout(), tbl, "id", "name", "isActive", "lastModified")
	return err
}

// explainMatch prints the candidates of an ambiguous name search
func explainMatch(cmd *cobra.Command, err error) error {
	var amb *qualtrics.AmbiguousMatchError
	if errors.As(err, &amb) {
		w := newTableWriter(cmd.ErrOrStderr())
		w.AppendHeader([]any{"id", "name"})
		for _, c := range amb.Candidates {
			w.AppendRow([]any{c.ID, c.Name})
		}
		w.Render()
	}
	return err
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// confirm asks a yes/no question unless --yes was given
func confirm(message string) (bool, error) {
	if assumeYes {
		return true, nil
	}
	var ok bool
	if err := survey.AskOne(&survey.Confirm{Message: message}, &ok); err != nil {
		return false, err
	}
	if !ok {
		logger.Info().Msg("Cancelled")
	}
	return ok, nil
}
