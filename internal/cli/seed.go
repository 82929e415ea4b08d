package cli

import (
	_ "embed"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/core/service"
)

//go:embed sample_tires.yaml
var sampleTires []byte

type sampleLedger struct {
	Status  domain.TireStatus `yaml:"status"`
	Records []struct {
		Account   string        `yaml:"account"`
		Product   string        `yaml:"product"`
		Brand     string        `yaml:"brand"`
		Group     domain.Group  `yaml:"group"`
		Season    domain.Season `yaml:"season"`
		Quantity  int           `yaml:"quantity"`
		UnitPrice string        `yaml:"unit_price"`
	} `yaml:"records"`
}

// loadSampleTires decodes the embedded sample ledger. Totals are quantity
// times unit price.
func loadSampleTires(raw []byte) ([]domain.TireRecord, error) {
	var ledger sampleLedger
	if err := yaml.Unmarshal(raw, &ledger); err != nil {
		return nil, fmt.Errorf("decode sample tires: %w", err)
	}

	records := make([]domain.TireRecord, 0, len(ledger.Records))
	for _, r := range ledger.Records {
		unit, err := decimal.NewFromString(r.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("sample %s - %s: unit price %q: %w", r.Account, r.Product, r.UnitPrice, err)
		}
		records = append(records, domain.TireRecord{
			Account:    r.Account,
			Product:    r.Product,
			Brand:      r.Brand,
			Group:      r.Group,
			Season:     r.Season,
			Quantity:   r.Quantity,
			UnitPrice:  unit,
			TotalPrice: unit.Mul(decimal.NewFromInt(int64(r.Quantity))),
			Status:     ledger.Status,
			Warehouse:  domain.WarehouseStock,
		})
	}
	return records, nil
}

func seedTiresCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-tires",
		Short: "Load sample tire records for the dashboards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			records, err := loadSampleTires(sampleTires)
			if err != nil {
				return err
			}

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			tires := service.NewTireService(store, a.cfg.Location(), a.log)
			created, err := tires.SeedTires(ctx, records)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully created %d sample tire records\n", created)
			return nil
		},
	}
}
