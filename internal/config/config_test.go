package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "app:\n  log_level: debug\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "America/Sao_Paulo", cfg.App.Timezone)
	assert.True(t, cfg.Panel.Enabled)
	assert.True(t, cfg.Panel.RunImmediately)
	assert.Equal(t, "POSICIONAL", cfg.Panel.ModeFilter)
	assert.Equal(t, "signed", cfg.Panel.GainMode)
	assert.Equal(t, "gain_threshold", cfg.Panel.Classifier)
	assert.Equal(t, -3.0, cfg.Panel.StopPct)
	assert.Equal(t, 5*time.Minute, cfg.Panel.IntervalDuration())
	assert.Equal(t, []string{"live", "snapshot", "sibling"}, cfg.Pricing.Tiers)
	assert.Equal(t, 8, cfg.Pricing.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.Pricing.VenueTimeoutDuration())
	assert.Equal(t, time.Minute, cfg.Pricing.Breaker.CooldownDuration())
	assert.Len(t, cfg.Pricing.EnabledVenues(), 3)
	assert.Equal(t, "json", cfg.Pricing.Snapshot.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Pricing.Snapshot.MaxAgeDuration())
	assert.Equal(t, "posicional", cfg.Pricing.Sibling.ListKey)
	assert.True(t, cfg.SnapshotJob.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.SnapshotJob.IntervalDuration())
	assert.False(t, cfg.Notify.Telegram.Enabled)
}

func TestLoadRespectsExplicitFalse(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
panel:
  run_immediately: false
snapshot_job:
  enabled: false
pricing:
  snapshot:
    max_age: "0"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Panel.RunImmediately)
	assert.False(t, cfg.SnapshotJob.Enabled)
	assert.Equal(t, time.Duration(0), cfg.Pricing.Snapshot.MaxAgeDuration())
}

func TestLoadMergesIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
panel:
  interval: 15m
  classifier: price_target
pricing:
  tiers: [live, coingecko]
  venues:
    - name: Binance
      enabled: true
    - name: gate
      enabled: false
`)
	path := writeFile(t, dir, "config.yaml", `
include:
  - base.yaml
panel:
  interval: 10m
snapshot_job:
  symbols: [btc, "eth/usdt", BTC]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.Panel.IntervalDuration())
	assert.Equal(t, "price_target", cfg.Panel.Classifier)
	assert.Equal(t, []string{"live", "coingecko"}, cfg.Pricing.Tiers)
	require.Len(t, cfg.Pricing.EnabledVenues(), 1)
	assert.Equal(t, "binance", cfg.Pricing.EnabledVenues()[0].Name)
	assert.Equal(t, "https://api.binance.com", cfg.Pricing.EnabledVenues()[0].RESTBaseURL)
	assert.Equal(t, []string{"BTC", "ETH"}, cfg.SnapshotJob.Symbols)
}

func TestLoadDetectsIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "include: [b.yaml]\n")
	writeFile(t, dir, "b.yaml", "include: [a.yaml]\n")
	_, err := Load(filepath.Join(dir, "a.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include cycle")
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"gain mode":      "panel:\n  gain_mode: absolute\n",
		"classifier":     "panel:\n  classifier: magic\n",
		"interval":       "panel:\n  interval: soon\n",
		"positive stop":  "panel:\n  stop_pct: 2\n",
		"tier":           "pricing:\n  tiers: [live, oracle]\n",
		"venue":          "pricing:\n  venues:\n    - name: kraken\n      enabled: true\n",
		"backend":        "pricing:\n  snapshot:\n    backend: redis\n",
		"telegram":       "notify:\n  telegram:\n    enabled: true\n",
		"nothing to run": "panel:\n  enabled: false\nsnapshot_job:\n  enabled: false\n",
		"proxy":          "pricing:\n  venues:\n    - name: bybit\n      enabled: true\n      proxy:\n        enabled: true\n",
		"no live venues": "pricing:\n  venues:\n    - name: bybit\n      enabled: false\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadExpandsSecrets(t *testing.T) {
	t.Setenv("SAIDA_TEST_TOKEN", "123:abc")
	path := writeFile(t, t.TempDir(), "config.yaml", `
notify:
  telegram:
    enabled: true
    bot_token: ${SAIDA_TEST_TOKEN}
    chat_id: 42
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.Notify.Telegram.BotToken)
	assert.Equal(t, int64(42), cfg.Notify.Telegram.ChatID)
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv(PathEnv, "")
	assert.Equal(t, DefaultPath, PathFromEnv())
	t.Setenv(PathEnv, "/etc/saida.yaml")
	assert.Equal(t, "/etc/saida.yaml", PathFromEnv())
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("k", "30s")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)
	d, err = parseDuration("k", "1d")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, d)
	d, err = parseDuration("k", "1500ms")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)
	_, err = parseDuration("k", "-5m")
	assert.Error(t, err)
}
