package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
// It will fail the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// RequireTestEnvironmentOrSkip is similar to RequireTestEnvironment but skips the test
// instead of failing it. Use this for optional tests that should only run in test environment.
func RequireTestEnvironmentOrSkip(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Skipf("Skipping test: GO_ENV must be 'test' (current: %q)", env)
	}
}

// EnsureTestEnvironment forces GO_ENV=test. Call it from TestMain
// before any package-level setup touches configuration.
func EnsureTestEnvironment() {
	if err := os.Setenv("GO_ENV", "test"); err != nil {
		panic(fmt.Sprintf("failed to set GO_ENV=test: %v", err))
	}
}

// PrintEnvironmentInfo prints the current test environment configuration.
// Useful for debugging test environment issues.
func PrintEnvironmentInfo() {
	fmt.Printf("Test Environment Info:\n")
	fmt.Printf("  GO_ENV: %s\n", os.Getenv("GO_ENV"))
	fmt.Printf("  DATABASE_URL: %s\n", maskURL(os.Getenv("DATABASE_URL")))
	fmt.Printf("  REDIS_URL: %s\n", maskURL(os.Getenv("REDIS_URL")))
	fmt.Printf("  AUTH0_DOMAIN: %s\n", os.Getenv("AUTH0_DOMAIN"))
	fmt.Printf("  PORT: %s\n", os.Getenv("PORT"))
}

// maskURL masks sensitive parts of a connection URL for safe printing
func maskURL(url string) string {
	if url == "" {
		return "(not set)"
	}
	if len(url) > 20 {
		note := " [WARNING: may not be a test instance]"
		if strings.Contains(url, "test") {
			note = " [contains 'test']"
		}
		return url[:20] + "..." + note
	}
	return url
}
