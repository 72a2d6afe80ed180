// SPDX-License-Identifier: Apache-2.0

package syncer

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ndedov/go-stash-sync/models"
)

// decodedOp is one operation after envelope decoding: identifiers
// normalized, timestamps parsed, payload decoded by the family adapter.
type decodedOp struct {
	op              models.Operation
	kind            string
	targetID        string
	clientUpdatedAt *time.Time
	payload         any
	recognized      bool
}

// envelope is the fully decoded and pre-validated batch. Once an envelope
// exists, nothing in it can abort the batch anymore; every remaining
// operation resolves to an applied, ignored, or conflict outcome.
type envelope struct {
	lastSync *time.Time
	ops      []decodedOp
}

// decodeEnvelope validates and normalizes the raw batch body.
//
// The whole batch is rejected with a *BadRequestError when the body shape is
// wrong, a timestamp cannot be parsed, or a recognized operation is missing a
// required field. Rejection happens before any mutation.
//
// An operation with a blank kind discriminator is dropped entirely and does
// not count toward the batch. A blank operation_id is replaced with a minted
// token for in-batch tracking.
func (e *Engine) decodeEnvelope(adapter EntityAdapter, body []byte) (*envelope, error) {
	if err := e.validateShape(body); err != nil {
		return nil, err
	}

	var req models.SyncRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, badRequest("batch", "cannot decode batch envelope: %v", err)
	}

	if e.maxBatch > 0 && len(req.Operations) > e.maxBatch {
		return nil, badRequest("operations", "batch exceeds the maximum of %d operations", e.maxBatch)
	}

	lastSync, err := parseTimestamp(req.LastSync)
	if err != nil {
		return nil, badRequest("last_sync", "%v", err)
	}

	env := &envelope{
		lastSync: lastSync,
		ops:      make([]decodedOp, 0, len(req.Operations)),
	}

	for i, op := range req.Operations {
		kind := strings.TrimSpace(op.Op)
		if kind == "" {
			// No discriminator at all: the item is skipped entirely, unlike
			// unknown-but-present kinds which are absorbed with an id.
			continue
		}

		if op.OperationID == "" {
			op.OperationID = e.ids.Generate()
		}

		clientUpdatedAt, tsErr := parseTimestamp(op.ClientUpdatedAt)
		if tsErr != nil {
			return nil, badRequest(fmt.Sprintf("operations[%d].client_updated_at", i), "%v", tsErr)
		}

		payload, recognized, decodeErr := adapter.Decode(op)
		if decodeErr != nil {
			if IsBadRequest(decodeErr) {
				return nil, decodeErr
			}
			return nil, badRequest(fmt.Sprintf("operations[%d]", i), "%v", decodeErr)
		}

		targetID := op.TargetID
		if recognized {
			switch {
			case kind == models.OpCreate && targetID == "":
				// Creation through an external path mints ids server-side;
				// a batch create without one gets the same treatment.
				targetID = e.ids.Generate()
			case kind != models.OpCreate && targetID == "":
				return nil, badRequest(fmt.Sprintf("operations[%d].id", i), "id is required for op %q", kind)
			}
		}

		env.ops = append(env.ops, decodedOp{
			op:              op,
			kind:            kind,
			targetID:        targetID,
			clientUpdatedAt: clientUpdatedAt,
			payload:         payload,
			recognized:      recognized,
		})
	}

	return env, nil
}

// parseTimestamp interprets a raw JSON timestamp value.
//
// Accepted forms:
//   - RFC3339 / RFC3339Nano strings, plus a naive "2006-01-02T15:04:05"
//     fallback interpreted as UTC;
//   - epoch numbers, in seconds (fractional allowed) or milliseconds
//     (distinguished by magnitude);
//   - JSON null or an absent value, which yield a nil time.
func parseTimestamp(raw json.RawMessage) (*time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("malformed timestamp string: %w", err)
		}

		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return &t, nil
		}
		if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
			t = t.UTC()
			return &t, nil
		}

		return nil, fmt.Errorf("cannot parse timestamp %q", s)
	}

	var epoch float64
	if err := json.Unmarshal(raw, &epoch); err != nil {
		return nil, fmt.Errorf("timestamp must be an RFC3339 string or epoch number, got %s", string(raw))
	}

	t := epochToTime(epoch)
	return &t, nil
}

// epochToTime converts an epoch number to a UTC time. Values at or above
// 1e12 are treated as milliseconds; JavaScript clients commonly send
// Date.now() output.
func epochToTime(epoch float64) time.Time {
	if math.Abs(epoch) >= 1e12 {
		return time.UnixMilli(int64(epoch)).UTC()
	}

	sec, frac := math.Modf(epoch)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
}
