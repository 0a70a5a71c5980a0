// Package util contains any functions used across the application that don't match
// any other package
package util

import (
	"os"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandStr returns a random alphanumeric string of length n. Used for
// identifiers that don't need to be secret like request and user IDs
func RandStr(n int) string {
	return gonanoid.MustGenerate(charset, n)
}

func IsRunningInDocker() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
}
