// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Atomic file writing for finished videos
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation
//   - Album art decoding, cropping and resizing
//
// # File Operations
//
//	err := ioutils.EnsureDir("/home/user/Videos/vinyl")
//	err = ioutils.WriteFile(ctx, "/home/user/Videos/vinyl/song.webm", data)
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from filenames:
//
//	safe := ioutils.SanitizeFileName(`Song: "Live"`) // Returns "Song Live"
//
// # Image Processing
//
// The ImageService turns uploaded album art into the square image painted
// on the vinyl label:
//
//	svc := ioutils.NewImageService()
//	art, _ := svc.LoadArt(ctx, data, 560)
package ioutils
