// Package gtfsrt fetches and decodes GTFS-Realtime protobuf feeds.
//
// Client performs the HTTP retrieval, Decode turns bytes into a FeedMessage,
// and Source binds both to one feed URL, returning a Result that tells a
// transport failure apart from a decode failure so callers can choose how to
// degrade.
package gtfsrt
