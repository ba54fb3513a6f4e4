// Package domain defines the core business entities: tasks, their
// append-only status ledger, comments, users and groups.
package domain
