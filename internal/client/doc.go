// SPDX-License-Identifier: Apache-2.0

// Package client implements a programmatic client for the sync API.
//
// It submits operation batches, tracks per-family watermarks between calls,
// and offers a background job that keeps local state fresh by polling for
// deltas on a ticker.
package client
