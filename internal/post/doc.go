// Package post assembles LeadFive blog posts.
//
// A post is planned from the answers collected by the wizard, optionally
// given a featured image, then rendered as Markdown with YAML front matter
// and written into the site's _posts directory:
//
//	---
//	layout: post
//	title: SEO Basics for Small Business
//	date: 2025-03-10 09:00:00 +0900
//	categories:
//	  - マーケティング
//	image: /assets/images/blog/2025-03-10-seo-basics-for-small-business-featured.jpg
//	---
//
//	## はじめに
//	...
//
// Planning is pure: Plan and Draft.WithImage return new values and never
// touch the filesystem. Only Write does.
package post
