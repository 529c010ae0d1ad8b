package redbone

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "redbone.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadOptionsFile(t *testing.T) {
	path := writeConfigFile(t, `
rbds: true
input: hex
channels: 2
mqtt_broker: tcp://localhost:1883
`)

	var o = NewOptions()
	require.NoError(t, LoadOptionsFile(path, o))

	assert.True(t, o.RBDS)
	assert.Equal(t, InputHex, o.Input)
	assert.Equal(t, 2, o.NumChannels)
	assert.Equal(t, "tcp://localhost:1883", o.MQTTBroker)

	// Absent keys leave the defaults alone.
	assert.Equal(t, "%Y-%m-%dT%H:%M:%S%z", o.TimeFormat)
	assert.Equal(t, "redbone/groups", o.MQTTTopic)
}

func TestLoadOptionsFileUnknownKey(t *testing.T) {
	path := writeConfigFile(t, "rdbs: true\n")
	assert.Error(t, LoadOptionsFile(path, NewOptions()))
}

func TestLoadOptionsFileBadInputFormat(t *testing.T) {
	path := writeConfigFile(t, "input: morse\n")
	assert.Error(t, LoadOptionsFile(path, NewOptions()))
}

func TestLoadOptionsFileMissing(t *testing.T) {
	assert.Error(t, LoadOptionsFile("/no/such/redbone.yaml", NewOptions()))
}
