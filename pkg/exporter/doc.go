// Package exporter drives a resumable bulk export: a strictly sequential
// pagination loop that fetches pages from the extract API, appends records
// to an output sink, and persists the newest cursor after every page.
//
// Durability is at-least-once. The cursor is persisted after the batch it
// belongs to is written, so a crash between the two causes the next run to
// re-fetch and re-append that batch. Duplicate lines on resume are accepted,
// never deduplicated.
package exporter
