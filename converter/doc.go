// Package converter shapes decoded GTFS-Realtime feeds into the JSON views
// served to map clients.
//
// Functions here are pure: they take a *gtfs.FeedMessage and return plain Go
// values, so the same feed always produces the same output. Entities missing
// the data a view needs (a position, an identifier, a stop-time event) are
// filtered out rather than emitted with null placeholders.
//
//	ids := converter.RouteIDs(feed)
//	vehicles := converter.Vehicles(feed, converter.FieldsDetailed)
//	byStop := converter.ArrivalsByStop(tripUpdates)
package converter
