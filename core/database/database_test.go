package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect_InvalidHost(t *testing.T) {
	cfg := Config{
		Host:           "invalid-host-that-does-not-exist",
		Port:           3306,
		User:           "root",
		Password:       "",
		Name:           "rentals",
		TimeoutSeconds: 1,
	}

	db, err := Connect(cfg)
	assert.Error(t, err)
	assert.Nil(t, db)
	assert.True(t,
		strings.Contains(err.Error(), "failed to connect") || strings.Contains(err.Error(), "failed to ping"),
		"unexpected error: %v", err)
}
