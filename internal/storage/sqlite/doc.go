// Package sqlite persists clusterer runs and their 3D hits in SQLite.
//
// The schema is managed by golang-migrate from the embedded migrations
// directory. A run row records the event, the time zero, the parameters
// used and summary counts; its 3D hits are stored one row each.
package sqlite
