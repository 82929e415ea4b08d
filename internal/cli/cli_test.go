package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/mestakip/internal/core/domain"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRunSteps_InOrder(t *testing.T) {
	var ran []string
	record := func(name string) step {
		return step{name: name, run: func(context.Context) error {
			ran = append(ran, name)
			return nil
		}}
	}

	err := runSteps(context.Background(), quietLogger(), []step{record("migrate"), record("setup-admin"), record("serve")})
	require.NoError(t, err)
	assert.Equal(t, []string{"migrate", "setup-admin", "serve"}, ran)
}

func TestRunSteps_StopsAtFirstFailure(t *testing.T) {
	var ran []string
	boom := errors.New("connection refused")
	steps := []step{
		{name: "migrate", run: func(context.Context) error {
			ran = append(ran, "migrate")
			return boom
		}},
		{name: "setup-admin", run: func(context.Context) error {
			ran = append(ran, "setup-admin")
			return nil
		}},
		{name: "serve", run: func(context.Context) error {
			ran = append(ran, "serve")
			return nil
		}},
	}

	err := runSteps(context.Background(), quietLogger(), steps)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "migrate")
	assert.Equal(t, []string{"migrate"}, ran, "no later step may run after a failure")
}

func TestLoadSampleTires(t *testing.T) {
	records, err := loadSampleTires(sampleTires)
	require.NoError(t, err)
	require.Len(t, records, 15)

	seasons := map[domain.Season]int{}
	for _, r := range records {
		assert.Equal(t, domain.TireDelivered, r.Status)
		assert.True(t, r.Group.Valid(), r.Product)
		assert.True(t, r.TotalPrice.Equal(r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity)))), r.Product)
		seasons[r.Season]++
	}
	assert.Equal(t, map[domain.Season]int{domain.SeasonSummer: 5, domain.SeasonWinter: 5, domain.SeasonAllSeason: 5}, seasons)

	first := records[0]
	assert.Equal(t, "Test Firma 1", first.Account)
	assert.Equal(t, "Yaz Lastik 205/55R16", first.Product)
	assert.True(t, first.TotalPrice.Equal(decimal.NewFromInt(18000)))
}

func TestLoadSampleTires_BadPrice(t *testing.T) {
	_, err := loadSampleTires([]byte("records:\n  - {account: A, product: B, unit_price: abc}\n"))
	assert.Error(t, err)
}

func TestRootCommand_ListsSubcommands(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--help"})
	require.NoError(t, cmd.Execute())

	for _, name := range []string{"migrate", "setup-admin", "create-user", "seed-tires", "serve", "start"} {
		assert.Contains(t, out.String(), name)
	}
}
