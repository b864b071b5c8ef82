// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	assert.Equal(t, "abc", RequestID(req))

	for _, id := range []string{"", strings.Repeat("a", 129)} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(RequestIDHeader, id)

		_, err := uuid.Parse(RequestID(req))
		assert.NoError(t, err)
	}
}

func TestNewLocationHistoryResponse(t *testing.T) {
	body, err := json.Marshal(NewLocationHistoryResponse(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"history":[]}`, string(body))
}
