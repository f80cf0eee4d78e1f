// Package lists implements the list/task domain: per-user boards of lists,
// each holding an ordered set of tasks. Every record is owned by exactly one
// user; all reads and writes are scoped to the authenticated user id, so one
// user can never observe or mutate another user's data.
package lists
