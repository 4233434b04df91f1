package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("BOT_USERNAME", "giveaway_bot")
	t.Setenv("SPONSOR_CHANNELS", "@a, ,@b")
	t.Setenv("ADMIN_IDS", "1, 2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 2, cfg.Giveaway.ActivationThreshold)
	assert.Equal(t, 10, cfg.Giveaway.ReferralTicketCap)
	assert.Equal(t, 6*time.Hour, cfg.Giveaway.WheelCooldown)
	assert.Equal(t, 7*24*time.Hour, cfg.Giveaway.SeasonDuration)
	assert.Equal(t, "bot:events", cfg.EventsStream)
	assert.Equal(t, []string{"@a", "@b"}, cfg.Sponsors())

	admins, err := cfg.AdminIDSet()
	require.NoError(t, err)
	assert.Equal(t, map[int64]struct{}{1: {}, 2: {}}, admins)
}

func TestLoad_RequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	require.NoError(t, os.Unsetenv("BOT_TOKEN"))
	t.Setenv("BOT_USERNAME", "giveaway_bot")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.Giveaway.ActivationThreshold = 2
		c.Giveaway.ReferralTicketCap = 10
		c.Giveaway.WheelCooldown = time.Hour
		c.Giveaway.SeasonDuration = time.Hour
		c.Giveaway.DefaultWinners = 1
		return c
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(c *Config){
		"threshold":  func(c *Config) { c.Giveaway.ActivationThreshold = 0 },
		"cap":        func(c *Config) { c.Giveaway.ReferralTicketCap = 0 },
		"cooldown":   func(c *Config) { c.Giveaway.WheelCooldown = 0 },
		"season":     func(c *Config) { c.Giveaway.SeasonDuration = -time.Hour },
		"winners":    func(c *Config) { c.Giveaway.DefaultWinners = 0 },
		"admin list": func(c *Config) { c.Telegram.AdminIDs = []string{"abc"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
