// Package ledger records which featured images were used by which posts.
//
// The ledger is a flat list of UsageRecord values. Every time a post gets an
// image, provider or generated, a record is appended. Records older than the
// retention window (7 days by default) are dropped the next time the ledger is
// pruned and saved.
//
// # Storage
//
// Two backends implement Store:
//
//   - JSONStore writes a single JSON array file. This is the default.
//   - SQLiteStore keeps the same records in an image_usage table.
//
// The JSON file matches the format the site's older scripts produced:
//
//	[
//	  {
//	    "photo_id": "Dwu85P9SOIk",
//	    "used_at": "2025-01-24T09:00:00Z",
//	    "path": "/assets/images/blog/2025-01-24-seo-basics-featured.jpg",
//	    "post": "seo-basics"
//	  }
//	]
//
// Neither backend locks. Two writers running at the same time race and the
// last Save wins. The tooling is meant to run from a single daily job.
//
// # Retention
//
// RecentIDs and Prune share one predicate: a record is recent when its
// timestamp lies in [now-window, now]. Records with a timestamp that could not
// be parsed are never recent.
package ledger
