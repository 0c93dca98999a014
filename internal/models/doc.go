// Package models defines domain entities for the Youtubefy mirroring service.
//
// The package contains two categories of types:
//
// 1. Authentication entities backed by the database:
//   - [User] : magic-link accounts keyed by uuid
//   - [SessionRow] : persisted login sessions keyed by raw token
//   - [SessionEnvelope] : the encrypted, client-visible session artifact
//   - [AdminCredential] : the single admin identity with its OAuth refresh token
//
// 2. Playlist Data Transfer Objects used by the mirror engine:
//   - [Playlist] : playlist metadata from either service
//   - [Track] : a title/artist pair with the service-specific id
//   - [PlaylistExport] : a playlist with its complete track listing
package models
