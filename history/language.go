// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"golang.org/x/text/language"
)

// Language is a supported Wikipedia language edition.
type Language string

// Supported editions.
const (
	Portuguese Language = "pt"
	English    Language = "en"
	Italian    Language = "it"

	DefaultLanguage = Portuguese
)

// Languages lists the supported editions.
var Languages = []Language{Portuguese, English, Italian}

// ParseLanguage maps a user supplied language tag to a supported edition.
// Regional variants collapse onto their base language ("pt-BR" is pt);
// anything else yields DefaultLanguage.
func ParseLanguage(s string) Language {
	tag, err := language.Parse(s)
	if err != nil {
		return DefaultLanguage
	}

	base, _ := tag.Base()
	for _, l := range Languages {
		if base.String() == string(l) {
			return l
		}
	}

	return DefaultLanguage
}

func (l Language) String() string {
	return string(l)
}
