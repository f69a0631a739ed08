package test

import (
	"fmt"
	"sync/atomic"
)

// uniqueCounter provides unique seeds within a single run
var uniqueCounter uint64

// uniqueSeed appends a run-local counter so scenarios never share a seed
func uniqueSeed(base string) string {
	n := atomic.AddUint64(&uniqueCounter, 1)
	return fmt.Sprintf("%s-%d", base, n)
}

// Verbose controls whether detailed logging is shown during tests
var Verbose = false

// TestResult represents the result of a test
type TestResult struct {
	Name    string
	Passed  bool
	Message string
}

func pass(name, format string, args ...any) TestResult {
	return TestResult{Name: name, Passed: true, Message: fmt.Sprintf(format, args...)}
}

func fail(name, format string, args ...any) TestResult {
	return TestResult{Name: name, Passed: false, Message: fmt.Sprintf(format, args...)}
}

// logAction logs a test action when verbose mode is enabled
func logAction(testName, action string) {
	if Verbose {
		fmt.Printf("  [%s] %s\n", testName, action)
	}
}

// logResult logs an expected vs actual result when verbose mode is enabled
func logResult(testName string, success bool, detail string) {
	if Verbose {
		status := "OK"
		if !success {
			status = "FAIL"
		}
		fmt.Printf("  [%s] %s: %s\n", testName, status, detail)
	}
}

// RunAllTests runs every scenario against the server at serverAddr.
func RunAllTests(serverAddr string) []TestResult {
	results := make([]TestResult, 0)

	// Group 1: REST API
	results = append(results, TestHealth(serverAddr))
	results = append(results, TestShipMatchesLocalGeneration(serverAddr))
	results = append(results, TestShipIsStable(serverAddr))
	results = append(results, TestRandomShip(serverAddr))
	results = append(results, TestExports(serverAddr))
	results = append(results, TestUnknownExportFormat(serverAddr))
	results = append(results, TestHistoryRecordsVisits(serverAddr))
	results = append(results, TestCatalogListsShips(serverAddr))

	// Group 2: Viewer sessions
	results = append(results, TestSessionShowsShip(serverAddr))
	results = append(results, TestSessionReleasesPreviousShip(serverAddr))
	results = append(results, TestSessionSeedTooLong(serverAddr))
	results = append(results, TestConcurrentSessions(serverAddr))

	return results
}

// PrintResults prints a summary of all test results
func PrintResults(results []TestResult) {
	passed := 0
	failed := 0

	fmt.Println("============================================================")
	fmt.Println("Integration Test Results")
	fmt.Println("============================================================")
	fmt.Println()

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
			failed++
		} else {
			passed++
		}
		fmt.Printf("[%s] %s: %s\n", status, r.Name, r.Message)
	}

	fmt.Println()
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Total: %d | Passed: %d | Failed: %d\n", len(results), passed, failed)
	fmt.Println("------------------------------------------------------------")
}
