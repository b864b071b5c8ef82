// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/historiaviva/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
