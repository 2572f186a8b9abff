// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import "fmt"

// fingerprint is one presented client identity: the header set a real
// browser of that build would send. Viewport is advertised through the
// viewport-width client hint some surfaces correlate with the UA.
type fingerprint struct {
	UserAgent      string
	AcceptLanguage string
	ViewportWidth  int
}

// fingerprints is the rotation pool. Entries track current desktop browser
// builds; stale UA strings are themselves a bot signal, so this list needs
// occasional refreshing.
var fingerprints = []fingerprint{
	{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		AcceptLanguage: "en-US,en;q=0.9",
		ViewportWidth:  1920,
	},
	{
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
		AcceptLanguage: "en-US,en;q=0.8",
		ViewportWidth:  1440,
	},
	{
		UserAgent:      "Mozilla/5.0 (X11; Linux x86_64; rv:127.0) Gecko/20100101 Firefox/127.0",
		AcceptLanguage: "en-US,en;q=0.5",
		ViewportWidth:  1920,
	},
	{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:126.0) Gecko/20100101 Firefox/126.0",
		AcceptLanguage: "en-GB,en;q=0.7",
		ViewportWidth:  1536,
	},
	{
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
		AcceptLanguage: "en-US,en;q=0.9",
		ViewportWidth:  1680,
	},
}

// headerValue formats the viewport hint.
func (f fingerprint) headerValue() string {
	return fmt.Sprintf("%d", f.ViewportWidth)
}
