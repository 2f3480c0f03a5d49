package storage

import (
	"context"
)

// TranscriptArchive stores raw external-generator responses so that partial
// pipeline results can be audited after the fact. Archiving is best-effort:
// the pipeline never fails because a transcript could not be saved.
type TranscriptArchive interface {
	// SaveTranscript stores one raw response body under the given object key.
	SaveTranscript(ctx context.Context, objectKey string, body []byte) error
}
