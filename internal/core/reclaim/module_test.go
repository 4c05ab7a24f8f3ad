package reclaim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-wlansta/config"
)

func TestModule_ProvidesDomain(t *testing.T) {
	var d *Domain

	app := fxtest.New(t,
		Module(),
		fx.Populate(&d),
	)
	app.RequireStart()
	require.NotNil(t, d)

	var ran bool
	d.Retire(func() { ran = true })
	app.RequireStop()

	// OnStop 会排空待回收项
	assert.True(t, ran)
}

func TestConfigFromUnified(t *testing.T) {
	assert.Equal(t, DefaultConfig(), ConfigFromUnified(nil))

	cfg := config.NewConfig()
	cfg.Reclaim.PollInterval = config.Duration(time.Millisecond)
	cfg.Reclaim.SpinRounds = 3

	c := ConfigFromUnified(cfg)
	assert.Equal(t, time.Millisecond, c.PollInterval)
	assert.Equal(t, 3, c.SpinRounds)
	assert.Equal(t, DefaultConfig().MaxPollInterval, c.MaxPollInterval)
}
