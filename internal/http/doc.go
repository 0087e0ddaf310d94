// Package http provides the HTTP client the player uses to fetch songs and
// album art given as http(s) URLs.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Size-limited downloads into memory with progress tracking
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient(http.WithMaxSize(64 << 20))
//
//	data, err := client.DownloadBytes(ctx, "https://example.com/song.mp3", func(written, total int64) {
//	    fmt.Printf("%d / %d\n", written, total)
//	})
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
