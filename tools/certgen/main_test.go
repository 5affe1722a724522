package main

import (
	"crypto/tls"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "a", "server.crt")
	keyPath := filepath.Join(dir, "a", "server.key")

	require.NoError(t, run([]string{"-hosts", "localhost, ::1", "-cert", certPath, "-key", keyPath}))

	_, err := tls.LoadX509KeyPair(certPath, keyPath)
	assert.NoError(t, err)
}

func TestRun_NoHosts(t *testing.T) {
	dir := t.TempDir()
	err := run([]string{"-hosts", " , ", "-cert", filepath.Join(dir, "c"), "-key", filepath.Join(dir, "k")})
	assert.Error(t, err)
}

func TestRun_BadFlag(t *testing.T) {
	assert.Error(t, run([]string{"-nope"}))
}
