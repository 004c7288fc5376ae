// Package proximity keeps track of the object nearest to a moving observer.
//
// A Tracker is driven once per fixed simulation step through UpdateTick. It
// re-derives the distance to the object it currently considers closest, asks
// the SafeZone whether the ranking can be proven unchanged since the last
// full fix, and otherwise scans a finite candidate sequence produced by a
// CandidateSource. Rank changes are reported to a Highlighter, one off/on
// pair per object whose rank changed.
//
// Four strategies combine {FullScan, RadiusQuery} with {single rank, two
// ranks plus safe zone}. StrategyRadiusSafeZone is the default.
//
// The tracker is not safe for concurrent use. UpdateTick, NotifyObjectAdded,
// NotifyObjectMoved, NotifyObjectRemoved and Reset must all be called from the
// goroutine that owns the simulation step.
package proximity
