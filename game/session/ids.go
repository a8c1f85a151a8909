package session

import (
	"strings"

	"github.com/google/uuid"
)

// NewClientID generates a random client identifier: a version 4 UUID in
// its 32 character hex form without dashes.
func NewClientID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
