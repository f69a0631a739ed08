package test

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lawnchairsociety/shipyard/internal/ship"
	"github.com/lawnchairsociety/shipyard/internal/testclient"
)

// =============================================================================
// Group 2: Viewer Sessions
// =============================================================================

const replyTimeout = 3 * time.Second

// TestSessionShowsShip checks a session reply carries the requested ship
func TestSessionShowsShip(serverAddr string) TestResult {
	const testName = "Session Shows Ship"

	client, err := testclient.NewTestClient("viewer", serverAddr)
	if err != nil {
		return fail(testName, "Connection failed: %v", err)
	}
	defer client.Close()

	seed := uniqueSeed("session")
	logAction(testName, fmt.Sprintf("Showing %q", seed))
	reply, err := client.ShowAndWait(seed, replyTimeout)
	if err != nil {
		return fail(testName, "%v", err)
	}

	want := ship.Generate(seed)
	if reply.Snapshot.Fingerprint != want.Fingerprint() {
		return fail(testName, "Fingerprint %s, want %s", reply.Snapshot.Fingerprint, want.Fingerprint())
	}
	if reply.LiveBuffers != reply.Snapshot.Meshes {
		return fail(testName, "Live buffers %d, ship has %d meshes", reply.LiveBuffers, reply.Snapshot.Meshes)
	}
	return pass(testName, "Showing %s with %d meshes", seed, reply.Snapshot.Meshes)
}

// TestSessionReleasesPreviousShip checks the live buffers only ever hold the current ship
func TestSessionReleasesPreviousShip(serverAddr string) TestResult {
	const testName = "Session Releases Previous Ship"

	client, err := testclient.NewTestClient("viewer", serverAddr)
	if err != nil {
		return fail(testName, "Connection failed: %v", err)
	}
	defer client.Close()

	for i := 1; i <= 5; i++ {
		seed := uniqueSeed("release")
		reply, err := client.ShowAndWait(seed, replyTimeout)
		if err != nil {
			return fail(testName, "%v", err)
		}
		ok := reply.LiveBuffers == reply.Snapshot.Meshes && reply.Shown == i
		logResult(testName, ok, fmt.Sprintf("%s buffers=%d meshes=%d shown=%d", seed, reply.LiveBuffers, reply.Snapshot.Meshes, reply.Shown))
		if !ok {
			return fail(testName, "After %d ships: %d live buffers for %d meshes", i, reply.LiveBuffers, reply.Snapshot.Meshes)
		}
	}
	return pass(testName, "Five ships shown without leaking buffers")
}

// TestSessionSeedTooLong checks oversized seeds are refused without ending the session
func TestSessionSeedTooLong(serverAddr string) TestResult {
	const testName = "Session Seed Too Long"

	client, err := testclient.NewTestClient("viewer", serverAddr)
	if err != nil {
		return fail(testName, "Connection failed: %v", err)
	}
	defer client.Close()

	reply, err := client.ShowAndWait(strings.Repeat("x", 200), replyTimeout)
	if err != nil {
		return fail(testName, "%v", err)
	}
	if reply.Error == "" {
		return fail(testName, "Expected an error reply")
	}

	reply, err = client.ShowAndWait(uniqueSeed("after"), replyTimeout)
	if err != nil || reply.Error != "" {
		return fail(testName, "Session unusable after refusal: %v %s", err, reply.Error)
	}
	return pass(testName, "Refused with %q and kept the session", reply.Error)
}

// TestConcurrentSessions checks parallel sessions each get their own ship
func TestConcurrentSessions(serverAddr string) TestResult {
	const testName = "Concurrent Sessions"
	const sessions = 3

	var wg sync.WaitGroup
	errs := make(chan error, sessions)
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client, err := testclient.NewTestClient(fmt.Sprintf("viewer%d", i), serverAddr)
			if err != nil {
				errs <- err
				return
			}
			defer client.Close()

			seed := uniqueSeed("parallel")
			reply, err := client.ShowAndWait(seed, replyTimeout)
			if err != nil {
				errs <- err
				return
			}
			if reply.Snapshot.Seed != seed {
				errs <- fmt.Errorf("session %d got %q, want %q", i, reply.Snapshot.Seed, seed)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		return fail(testName, "%v", err)
	}
	return pass(testName, "%d sessions served independently", sessions)
}
