// Package extractor acquires media payloads for queries that miss the
// catalog. The primary path is a remote extraction API; a local yt-dlp
// invocation serves as fallback. Both produce a payload file under the
// staging directory plus descriptive metadata.
package extractor
