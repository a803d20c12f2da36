package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
	"github.com/DaDevFox/task-systems/forecast-core/internal/importer"
	"github.com/DaDevFox/task-systems/forecast-core/internal/repository"
	"github.com/DaDevFox/task-systems/forecast-core/internal/service"
)

func newImportCommand() *cobra.Command {
	var files importer.Files

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import products, batches and sales from CSV files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if files == (importer.Files{}) {
				return errors.New("at least one of --products, --batches or --sales is required")
			}

			repo, err := repository.NewPharmacyRepository(cfg.Database.Path, repository.DatabaseType(cfg.Database.Type))
			if err != nil {
				return errors.Wrap(err, "failed to open repository")
			}
			defer repo.Close()

			summary, err := importer.Import(cmd.Context(), repo, files, logger)
			if err != nil {
				return errors.Wrap(err, "import failed")
			}
			return printImportSummary(cmd.OutOrStdout(), summary, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&files.Products, "products", "", "Products CSV (id,name,sku,min_stock_level,unit_price,active)")
	cmd.Flags().StringVar(&files.Batches, "batches", "", "Batches CSV (id,product_id,batch_number,quantity,expiry_date,active)")
	cmd.Flags().StringVar(&files.Sales, "sales", "", "Sales CSV (id,product_id,quantity,unit_price,sold_at)")

	return cmd
}

// forecastFlags are shared by the forecast and restock commands
type forecastFlags struct {
	productID string
	period    string
	horizon   int
}

func (f *forecastFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.productID, "product", "p", "", "Product ID (all products when empty)")
	cmd.Flags().StringVar(&f.period, "period", "", "Period type: weekly, monthly or quarterly (config default when empty)")
	cmd.Flags().IntVarP(&f.horizon, "horizon", "n", 0, "Number of periods to forecast (config default when zero)")
}

func (f *forecastFlags) resolve() (domain.PeriodType, int, error) {
	period := f.period
	if period == "" {
		period = cfg.Forecast.DefaultPeriod
	}
	periodType, err := domain.ParsePeriodType(period)
	if err != nil {
		return "", 0, err
	}

	horizon := f.horizon
	if horizon == 0 {
		horizon = cfg.Forecast.DefaultHorizon
	}
	return periodType, horizon, nil
}

func newForecastCommand() *cobra.Command {
	var flags forecastFlags

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast product demand and revenue",
		RunE: func(cmd *cobra.Command, args []string) error {
			periodType, horizon, err := flags.resolve()
			if err != nil {
				return err
			}

			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			forecast, err := service.NewForecastService(store, logger).
				GenerateSalesForecast(cmd.Context(), flags.productID, periodType, horizon)
			if err != nil {
				return errors.Wrap(err, "forecast failed")
			}
			return printSalesForecast(cmd.OutOrStdout(), forecast, jsonOutput)
		},
	}
	flags.register(cmd)

	return cmd
}

func newRestockCommand() *cobra.Command {
	var flags forecastFlags

	cmd := &cobra.Command{
		Use:   "restock",
		Short: "Recommend restock quantities from forecast demand and current stock",
		RunE: func(cmd *cobra.Command, args []string) error {
			periodType, horizon, err := flags.resolve()
			if err != nil {
				return err
			}

			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			forecaster := service.NewForecastService(store, logger)
			recommendations := service.NewRestockPlanner(forecaster, store, logger).
				GenerateRestockForecast(cmd.Context(), flags.productID, periodType, horizon)
			return printRestock(cmd.OutOrStdout(), recommendations, jsonOutput)
		},
	}
	flags.register(cmd)

	return cmd
}

func openStore(ctx context.Context) (repository.ForecastStore, error) {
	store, err := repository.NewForecastStore(ctx, repository.DatabaseType(cfg.Database.Type), cfg.Database.Path, cfg.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open repository")
	}
	return store, nil
}
