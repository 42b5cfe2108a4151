// Package ui provides the EasyLoft terminal interface.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds the three stores from
// package state and keeps copies of their snapshots; every store action runs
// in a tea.Cmd and reports back through an actionMsg, after which the model
// re-reads the snapshots. A tick re-reads them once a second so background
// refreshes show up without user input.
//
// # Screens
//
//   - Sign in: login, registration, forgot password and reset-by-token forms
//   - Lofts: loft list with an overview pane (totals, newest pigeons, details)
//   - Pigeons: filterable table or card grid with a scrollable detail pane
//
// Create and edit forms, delete confirmations and the help overlay are drawn
// as centered modals over the current screen.
//
// # Preferences
//
// The theme and the pigeon filter (search, sex, plumage, parents, lofts,
// view and sort order) are written to the preferences file whenever they
// change. The birth date range is kept for the session only.
//
// # Key Bindings
//
// See DefaultKeyMap; the help overlay (?) lists the full set.
package ui
