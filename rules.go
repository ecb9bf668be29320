package main

import (
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLength = 4
	maxMessageLength  = 255
)

// isValidAccount reports whether an account may be registered.
func isValidAccount(a Account) bool {
	return strings.TrimSpace(a.Username) != "" &&
		utf8.RuneCountInString(a.Password) >= minPasswordLength
}

// isValidMessage reports whether a message may be posted.
func isValidMessage(m Message) bool {
	return isValidMessageText(m.MessageText)
}

func isValidMessageText(text string) bool {
	return strings.TrimSpace(text) != "" && utf8.RuneCountInString(text) <= maxMessageLength
}
