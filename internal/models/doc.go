// Package models defines the core domain entities for Billbuster.
//
// # Entities
//
//   - LineItem: one priced line recovered from a scanned receipt
//   - Assignment: which group members share a line item
//   - Bill: a saved receipt with items and assignments, owned by a group
//   - Group: a set of members sharing expenses
//   - Member: a member profile with the delivery token for push reminders
//   - Settlement: a payment between members that clears debt
//   - Reminder: a user-initiated nudge with its own delivery lifecycle
//
// Members are identified by stable string IDs issued by the external
// identity provider; the backend never mints member identities itself.
//
// # Design Principles
//
//  1. Money is decimal.Decimal everywhere, two fractional digits. Never floats.
//  2. Saved bills are append-only history: an edit inserts a superseding
//     version and stamps the old row, it never mutates in place.
//  3. Balances are always derived from bill and settlement history, never
//     stored as a field.
//  4. Relationships use ID strings instead of pointers to avoid circular
//     references.
package models
