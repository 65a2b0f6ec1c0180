package cmd

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gotpfa/casefile"
)

func TestRunCaseWaterflood(t *testing.T) {
	c, err := casefile.Read("../casefile/testdata/waterflood.yaml")
	require.NoError(t, err)
	v := viper.New()
	sm, err := RunCase(c, v, RunOptions{})
	require.NoError(t, err)

	// Case file options reach the solver config
	assert.Equal(t, 20, v.GetInt("transport_nr_max_it"))
	assert.True(t, v.GetBool("clamp_sat"))

	assert.Equal(t, 10, sm.Steps)
	assert.Equal(t, 0, sm.Failed)
	assert.InDelta(t, 0.1, sm.Time, 1e-12)
	require.Len(t, sm.Saturation, 20)
	for _, s := range sm.Saturation {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
	// Water enters at xmin
	assert.Greater(t, sm.Saturation[0], sm.Saturation[19])
	assert.Greater(t, sm.Saturation[0], 0.0)

	n, err := testutil.GatherAndCount(sm.Registry, "gotpfa_transport_attempts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	PrintSummary(sm)
}

func TestRunCaseRejectsBadSolverOptions(t *testing.T) {
	c, err := casefile.Read("../casefile/testdata/tets.yaml")
	require.NoError(t, err)
	c.Solver = map[string]interface{}{"transport_nr_max_it": 0}
	_, err = RunCase(c, viper.New(), RunOptions{})
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	rootCmd.SetArgs([]string{"config"})
	assert.NoError(t, rootCmd.Execute())
}

func TestServeMetricsStops(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "gotpfa_test_total"}))
	addr, stop, err := serveMetrics("127.0.0.1:0", reg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "gotpfa_test_total")

	stop()
	_, err = client.Get("http://" + addr + "/metrics")
	assert.Error(t, err)
}

func TestRunCaseMetricsAddrInUse(t *testing.T) {
	reg := prometheus.NewRegistry()
	addr, stop, err := serveMetrics("127.0.0.1:0", reg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer stop()

	c, err := casefile.Read("../casefile/testdata/tets.yaml")
	require.NoError(t, err)
	_, err = RunCase(c, viper.New(), RunOptions{MetricsAddr: addr})
	assert.Error(t, err)
}
