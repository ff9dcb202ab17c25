package bintray_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabbitmq/bintray-go/pkg/bintray"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := bintray.LoadConfig(filepath.Join(t.TempDir(), "bintray.yml"))
	require.NoError(t, err)

	assert.Equal(t, bintray.DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, bintray.DefaultDownloadURL, cfg.DownloadURL)
	assert.Empty(t, cfg.Username)
	assert.Empty(t, cfg.RequestTimeout)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	fn := filepath.Join(t.TempDir(), "bintray.yml")
	require.NoError(t, os.WriteFile(fn, []byte(`
api_url: https://api.example.test
download_url: https://dl.example.test
username: luke
api_key: hunter2
request_timeout: 5s
`), 0o600))

	cfg, err := bintray.LoadConfig(fn)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.test", cfg.APIURL)
	assert.Equal(t, "https://dl.example.test", cfg.DownloadURL)
	assert.Equal(t, "luke", cfg.Username)
	assert.Equal(t, "hunter2", cfg.APIKey)
	assert.Equal(t, "5s", cfg.RequestTimeout)

	_, err = bintray.NewClient(*cfg)
	require.NoError(t, err)
}

func TestNewClient_BadRequestTimeout(t *testing.T) {
	t.Parallel()
	_, err := bintray.NewClient(bintray.Config{RequestTimeout: "soon"})
	require.Error(t, err)
}

func TestLoadConfig_Malformed(t *testing.T) {
	t.Parallel()
	fn := filepath.Join(t.TempDir(), "bintray.yml")
	require.NoError(t, os.WriteFile(fn, []byte(`{{nope`), 0o600))

	_, err := bintray.LoadConfig(fn)
	require.Error(t, err)
}
