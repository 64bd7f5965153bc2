package publisher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// loginURL is the entry point for the interactive auth-state capture.
const loginURL = "https://app.reclaim.ai/login"

// SaveAuthState opens a headed browser against the Reclaim login page and
// waits for the operator to sign in. The session lands in userDataDir, so
// later headless runs skip the credential form entirely. This is the only
// supported path for SSO accounts, whose login flow cannot be scripted.
func SaveAuthState(ctx context.Context, userDataDir string, wait time.Duration) error {
	if userDataDir == "" {
		return fmt.Errorf("a profile directory is required to save auth state")
	}
	if wait == 0 {
		wait = 2 * time.Minute
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", false),
		chromedp.UserDataDir(userDataDir),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	if err := chromedp.Run(browserCtx, chromedp.Navigate(loginURL)); err != nil {
		return fmt.Errorf("could not open login page: %w", err)
	}

	fmt.Println("Log in to Reclaim in the opened browser window...")

	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}

		var location string
		if err := chromedp.Run(browserCtx, chromedp.Location(&location)); err != nil {
			return fmt.Errorf("lost browser session before login completed: %w", err)
		}
		if loggedIn(location) {
			fmt.Printf("Login detected. Session saved to %s\n", userDataDir)
			return nil
		}
	}

	return fmt.Errorf("timed out after %s waiting for login to complete", wait)
}

// loggedIn reports whether the browser left the login flow for the app.
func loggedIn(location string) bool {
	if location == "" {
		return false
	}
	if strings.Contains(location, "/login") || strings.Contains(location, "/signup") {
		return false
	}
	return strings.Contains(location, "app.reclaim.ai")
}
