package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"business-finder/internal/common/errors"
	"business-finder/internal/finder"
	"business-finder/internal/models"
	exportcsv "business-finder/internal/workers/business-search/export-csv"

	"github.com/spf13/cobra"
)

type searchFlags struct {
	keyword      string
	location     string
	locationType string
	name         string
	rating       string
	csvPath      string
	exportDir    string
	locale       string
}

func newSearchCmd(a *app) *cobra.Command {
	f := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run one search and print the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runSearch(ctx, cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.keyword, "keyword", "k", "", "business keyword, e.g. bakery")
	cmd.Flags().StringVarP(&f.location, "location", "l", "", "location text")
	cmd.Flags().StringVarP(&f.locationType, "type", "t", string(models.LocationTypePostalCode), "location type: postal_code, address, city, state, country")
	cmd.Flags().StringVar(&f.name, "name", "", "keep businesses whose name contains this text")
	cmd.Flags().StringVar(&f.rating, "rating", "", "minimum rating: 3+, 3.5+ or 4+")
	cmd.Flags().StringVar(&f.csvPath, "csv", "", "write the filtered results to this CSV file")
	cmd.Flags().StringVar(&f.exportDir, "export-dir", "", "write the filtered results to a dated CSV file in this directory")
	cmd.Flags().StringVar(&f.locale, "locale", "", "CSV column language: en or es")
	_ = cmd.MarkFlagRequired("keyword")
	_ = cmd.MarkFlagRequired("location")
	cmd.MarkFlagsMutuallyExclusive("csv", "export-dir")

	return cmd
}

func (a *app) runSearch(ctx context.Context, cmd *cobra.Command, f *searchFlags) error {
	locationType, err := models.ParseLocationType(f.locationType)
	if err != nil {
		return err
	}
	threshold, err := models.ParseRatingThreshold(f.rating)
	if err != nil {
		return err
	}
	var locale exportcsv.Locale
	if f.locale != "" {
		if locale, err = exportcsv.ParseLocale(f.locale); err != nil {
			return err
		}
	}

	svc, err := finder.New(finder.Options{
		AppConfig: a.cfg,
		Provider:  finder.NewProvider(a.cfg, a.logger),
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}

	rs, err := svc.Search(ctx, finder.Request{
		Keyword:      f.keyword,
		Location:     f.location,
		LocationType: locationType,
	})
	if err != nil {
		return userError(err)
	}

	filters := models.Filters{Name: f.name, Rating: threshold}
	_, filtered, err := svc.Results(ctx, rs.SessionID, filters)
	if err != nil {
		return userError(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s near %s: %d found, %d shown\n\n", rs.Keyword, locationLabel(rs), len(rs.Businesses), len(filtered))
	if err := renderBusinesses(out, filtered); err != nil {
		return err
	}

	if f.csvPath == "" && f.exportDir == "" {
		return nil
	}

	export, err := svc.Export(ctx, rs.SessionID, filters, locale)
	if err != nil {
		return userError(err)
	}
	path := f.csvPath
	if path == "" {
		path = filepath.Join(f.exportDir, export.FileName)
	}
	if err := os.WriteFile(path, []byte(export.CSV), 0o644); err != nil {
		return userError(errors.NewExportFailedError(err))
	}
	fmt.Fprintf(out, "\nwrote %d rows to %s\n", export.Rows, path)
	return nil
}

func locationLabel(rs *models.ResultSet) string {
	if rs.Location.FormattedAddress != "" {
		return rs.Location.FormattedAddress
	}
	return rs.LocationInput
}

// userError turns a StandardError into its message, with details when present.
func userError(err error) error {
	stdErr, ok := errors.AsStandardError(err)
	if !ok {
		return err
	}
	if stdErr.Details != "" {
		return fmt.Errorf("%s (%s)", stdErr.Message, stdErr.Details)
	}
	return fmt.Errorf("%s", stdErr.Message)
}
