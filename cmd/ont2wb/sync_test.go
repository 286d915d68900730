package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osegermany/ont2wb/internal/domain/entities"
	"github.com/osegermany/ont2wb/internal/infrastructure/config"
)

func TestCredentials(t *testing.T) {
	cfg := config.WikiBaseConfig{Username: "cfg-user", Password: "cfg-pass"}

	tests := []struct {
		name     string
		args     []string
		envUser  string
		envPass  string
		wantUser string
		wantPass string
	}{
		{name: "arguments win", args: []string{"arg-user", "arg-pass"}, envUser: "env-user", envPass: "env-pass", wantUser: "arg-user", wantPass: "arg-pass"},
		{name: "environment over config", envUser: "env-user", envPass: "env-pass", wantUser: "env-user", wantPass: "env-pass"},
		{name: "config fallback", wantUser: "cfg-user", wantPass: "cfg-pass"},
		{name: "user argument only", args: []string{"arg-user"}, envPass: "env-pass", wantUser: "arg-user", wantPass: "env-pass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(envUser, tt.envUser)
			t.Setenv(envPassword, tt.envPass)

			user, pass := credentials(tt.args, cfg)

			assert.Equal(t, tt.wantUser, user)
			assert.Equal(t, tt.wantPass, pass)
		})
	}
}

func TestSummaryLine(t *testing.T) {
	s := entities.SyncSummary{Created: 3, Updated: 1, Unchanged: 7, Failed: 2}
	assert.Equal(t, "Created: 3, updated: 1, unchanged: 7, failed: 2", summaryLine(s))
}

func TestNewSyncCmd_Flags(t *testing.T) {
	cmd := newSyncCmd()

	for _, name := range []string{"file", "format", "dry-run", "journal", "metrics"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Error(t, cmd.Args(cmd, []string{"a", "b", "c"}))
	assert.NoError(t, cmd.Args(cmd, []string{"a", "b"}))
}
