// File: cmd/cmd_test.go
package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["engage"])
	assert.True(t, names["post"])
}

func TestEngageFlagsBindToConfig(t *testing.T) {
	f := engageCmd.Flags()
	require.NoError(t, f.Set("mode", "both"))
	require.NoError(t, f.Set("comment", "Nice one."))
	require.NoError(t, f.Set("max-actions", "7"))
	require.NoError(t, f.Set("infinite", "true"))
	require.NoError(t, f.Set("ai", "true"))

	v := viper.GetViper()
	assert.Equal(t, "both", v.GetString("engage.mode"))
	assert.Equal(t, "Nice one.", v.GetString("engage.comment_text"))
	assert.Equal(t, 7, v.GetInt("engage.max_actions"))
	assert.True(t, v.GetBool("engage.infinite"))
	assert.True(t, v.GetBool("ai.enabled"))
}

func TestPostRequiresTextOrTopic(t *testing.T) {
	postOpts.text = ""
	postOpts.topic = ""

	err := runPost(postCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--text or --topic")
}

func TestVersionIsSet(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.Equal(t, Version, rootCmd.Version)
}
