package utils

import (
	"strconv"
	"testing"
)

func TestGenerateRoomCode(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code := GenerateRoomCode()
		if len(code) != 6 {
			t.Fatalf("Expected six digits, got %q", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("Code %q is not numeric: %v", code, err)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("Code %d out of range", n)
		}
	}
}
