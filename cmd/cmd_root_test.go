// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"testing"

	"github.com/jcodagnone/historiaviva/config"
	"github.com/stretchr/testify/assert"
)

func TestUserAgent(t *testing.T) {
	Version = "1.2.3"
	c := config.Default()

	assert.Equal(t, "historiaviva/1.2.3 (+https://github.com/jcodagnone/historiaviva)", userAgent(c))

	c.Wikipedia.UserAgent = "custom/1.0"
	assert.Equal(t, "custom/1.0", userAgent(c))
}

func TestDebugNearbyArgs(t *testing.T) {
	assert.NoError(t, debugNearbyCmd.Args(debugNearbyCmd, nil))
	assert.NoError(t, debugNearbyCmd.Args(debugNearbyCmd, []string{"38.7", "-9.1"}))
	assert.Error(t, debugNearbyCmd.Args(debugNearbyCmd, []string{"38.7"}))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer

	assert.NoError(t, printJSON(&buf, "38.7 -9.1\t\t", []string{"a"}))
	assert.Equal(t, "38.7 -9.1\t\t[\"a\"]\n", buf.String())
}
