package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edusync/gateway/internal/config"
)

type testConfig struct {
	HTTP struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"http"`

	Backend struct {
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"backend"`
}

func TestLoad(t *testing.T) {
	file := writeConfig(t, `
http:
  port: 8088
backend:
  base_url: http://backend.local
`)

	c := defaults()
	require.NoError(t, config.Load(file, &c))

	require.Equal(t, 8088, c.HTTP.Port)
	require.Equal(t, "http://backend.local", c.Backend.BaseURL)
	require.Equal(t, 15*time.Second, c.Backend.Timeout, "values absent from the file keep their defaults")
}

func TestLoad_EnvOverride(t *testing.T) {
	file := writeConfig(t, `
http:
  port: 8088
`)

	t.Setenv("HTTP_PORT", "9099")

	c := defaults()
	require.NoError(t, config.Load(file, &c))

	require.Equal(t, 9099, c.HTTP.Port, "environment wins over the file")
}

func TestLoad_MissingFile(t *testing.T) {
	c := defaults()
	err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), &c)
	require.Error(t, err)
}

func defaults() testConfig {
	var c testConfig
	c.HTTP.Port = 8080
	c.Backend.Timeout = 15 * time.Second
	return c
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	return file
}
