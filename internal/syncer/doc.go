// SPDX-License-Identifier: Apache-2.0

// Package syncer implements the generic batch-reconciliation engine shared by
// every entity family (notes, bookmarks, file objects).
//
// A disconnected client accumulates local edits, then submits them as one
// ordered batch together with the watermark returned by its previous call.
// The engine decodes and pre-validates the envelope, runs an
// optimistic-concurrency check per operation, applies the surviving state
// transitions in submission order, and hands back the per-operation outcomes
// plus the delta of everything that changed since the client's watermark.
//
// The engine itself is stateless and family-agnostic: all entity-specific
// behavior (operation vocabulary, payload decoding, persistence) is supplied
// through the [EntityAdapter] capability set. One engine instance serves all
// families.
package syncer
