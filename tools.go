//go:build tools
// +build tools

// Package tools pins the code generators used by go:generate (mockgen for the
// contract mocks) so they are versioned with the module.
package chat_sync

import (
	_ "go.uber.org/mock/mockgen"
)
