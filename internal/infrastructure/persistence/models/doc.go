// Package models contains GORM persistence models that map to database tables.
// Domain types carry no ORM tags; each model converts to and from its domain
// type with ToDomain and FromDomain.
//
// Tables:
//   - organizations, users: identity context
//   - projects: project aggregate and its tracker-owned deadline columns
//   - progress_reports: report review workflow
//   - notification_deliveries: outbox of pending overdue emails
package models
