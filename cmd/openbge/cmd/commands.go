package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openbge-client/internal/domain"
	"github.com/openbge-client/internal/service"
)

func (a *app) samplesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "samples NUMBER...",
		Short: "Look up biosample kits",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.service.GetSampleData(cmd.Context(), args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
}

func (a *app) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate NUMBER",
		Short: "Check whether a sample number is known to the platform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.service.IsValidNumber(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
}

func (a *app) variantsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "variants NUMBER RSID...",
		Short: "Get the genotype calls of a sample at RS loci",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.service.GetVariants(cmd.Context(), args[0], splitList(args[1:]))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
}

func (a *app) surveyCommand() *cobra.Command {
	var (
		userID   string
		surveyID int64
	)

	cmd := &cobra.Command{
		Use:   "survey NUMBER...",
		Short: "List survey answer sheets of a user",
		Long: `List the survey answer sheets a user submitted for one survey across
the given samples.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conditions := make([]domain.SurveyCondition, 0, len(args))
			for _, number := range args {
				conditions = append(conditions, domain.SurveyCondition{
					UserID:   userID,
					Number:   number,
					SurveyID: surveyID,
				})
			}

			result, err := a.service.GetSurveyResponses(cmd.Context(), conditions)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().Int64Var(&surveyID, "survey", 0, "survey id")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("survey")
	return cmd
}

func (a *app) smsCommand() *cobra.Command {
	var (
		template string
		data     string
		vars     map[string]string
	)

	cmd := &cobra.Command{
		Use:   "sms PHONE",
		Short: "Send a templated SMS notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{}
			if data != "" {
				if err := json.Unmarshal([]byte(data), &payload); err != nil {
					return domain.NewValidationError("data", "must be a JSON object of strings", data)
				}
			}
			for k, v := range vars {
				payload[k] = v
			}

			result, err := a.service.SendSMS(cmd.Context(), args[0], template, payload)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&template, "template", "", "template code")
	cmd.Flags().StringVar(&data, "data", "", `template variables as JSON, e.g. '{"name":"Li"}'`)
	cmd.Flags().StringToStringVar(&vars, "var", nil, "template variable as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func (a *app) searchCommand() *cobra.Command {
	var req domain.SearchRequest

	cmd := &cobra.Command{
		Use:   "search NUMBER QUERY",
		Short: "Search applications, reports, loci and surveys",
		Long: `Search the platform's content for a sample.

Scopes are application, report, locus and survey. Without --scope the
application, report and survey scopes are searched. Locus searches are
meant to be run on their own.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Number = args[0]
			req.Query = args[1]
			req.Scopes = splitList(req.Scopes)

			result, err := a.service.DoSearch(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringSliceVar(&req.Scopes, "scope", nil, "scopes to search (repeatable or comma separated)")
	cmd.Flags().IntVar(&req.Page, "page", 0, "page number (default 1)")
	cmd.Flags().IntVar(&req.Limit, "limit", 0, "page size (default 10)")
	return cmd
}

func (a *app) probeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check platform connectivity via its not-found endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.service.GetNotFound(cmd.Context())
			result := map[string]interface{}{"reachable": service.Reachable(err)}
			if err != nil {
				se, ok := domain.AsServiceError(err)
				if !ok {
					return err
				}
				result["code"] = se.Code
				result["message"] = se.Message
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
}

// splitList flattens comma separated values
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
