package blob

import "context"

// BatchOutcome reports the result of a bulk delete.
type BatchOutcome struct {
	TotalRequested int `json:"requested"`
	TotalFailed    int `json:"failed"`
}

// deleteInBatches partitions keys into ordered groups of at most
// maxBatchSize and submits each group as one backend batch call.
// Groups are processed sequentially. Per-item failures inside a
// submitted group are counted and processing continues; a transport
// error from a group aborts the remaining groups and propagates.
func deleteInBatches(ctx context.Context, backend Backend, keys []string, maxBatchSize int) (BatchOutcome, error) {
	outcome := BatchOutcome{TotalRequested: len(keys)}

	if maxBatchSize <= 0 {
		return outcome, &ConfigError{Setting: "max_batch_size", Reason: "must be positive"}
	}
	if len(keys) == 0 {
		return outcome, nil
	}

	for start := 0; start < len(keys); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		failed, err := backend.DeleteBatch(ctx, keys[start:end])
		if err != nil {
			return outcome, err
		}
		outcome.TotalFailed += failed
	}

	return outcome, nil
}
