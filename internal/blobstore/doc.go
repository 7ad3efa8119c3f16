// Package blobstore moves acquired payload bytes into the durable blob
// channel. The engine treats the returned locator as opaque; only the
// channel's own addressing scheme interprets it. The production backend is
// NATS JetStream: payload bytes land in an object store bucket and an
// announcement is published on a stream whose sequence number becomes the
// artifact's ordering token.
package blobstore
