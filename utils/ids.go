package utils

import (
	"math/rand"
	"strconv"
)

// GenerateRoomCode creates a random six-digit room code as a string. Codes
// can collide; callers that need uniqueness check against their live set and
// retry.
func GenerateRoomCode() string {
	return strconv.Itoa(rand.Intn(900000) + 100000)
}
