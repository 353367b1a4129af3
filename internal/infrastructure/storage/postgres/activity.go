package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/domain/activity"
)

// compressionAlgo specifies the compression applied to a stored payload.
type compressionAlgo string

const (
	compressionNone compressionAlgo = "none"
	compressionZstd compressionAlgo = "zstd"
)

// ActivityStore implements activity.Store on PostgreSQL. Payloads above
// the threshold are stored zstd-compressed.
type ActivityStore struct {
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int // bytes
}

var _ activity.Store = (*ActivityStore)(nil)

// NewActivityStore creates the store with a shared encoder/decoder pair.
func NewActivityStore() (*ActivityStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &ActivityStore{
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// Record inserts an entry within the ambient transaction.
func (s *ActivityStore) Record(ctx context.Context, a *activity.Activity) error {
	if id.IsNil(a.ID) {
		a.ID = id.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	payload := []byte(a.Payload)
	var compressed []byte
	algo := compressionNone
	if len(payload) > s.compressThreshold {
		compressed = s.encoder.EncodeAll(payload, nil)
		payload = nil
		algo = compressionZstd
	}

	sql := `
		INSERT INTO activities (
			id, entity_type, entity_id, verb, user_id,
			payload, payload_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	querier := MustGetTxManager(ctx).GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		a.ID, a.EntityType, a.EntityID, a.Verb, a.UserID,
		payload, compressed, algo, a.CreatedAt,
	)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("record activity: %w", err))
	}
	return nil
}

// ListForEntity returns the newest entries for one entity, with payloads
// decompressed.
func (s *ActivityStore) ListForEntity(ctx context.Context, entityType string, entityID id.ID, limit int) ([]*activity.Activity, error) {
	sql := `
		SELECT id, entity_type, entity_id, verb, user_id,
		       payload, payload_compressed, compression_algo, created_at
		FROM activities
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := MustGetTxManager(ctx).GetQuerier(ctx).Query(ctx, sql, entityType, entityID, limit)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("query activities: %w", err))
	}
	defer rows.Close()

	entries := []*activity.Activity{}
	for rows.Next() {
		var (
			a          activity.Activity
			compressed []byte
			algo       compressionAlgo
		)
		err := rows.Scan(
			&a.ID, &a.EntityType, &a.EntityID, &a.Verb, &a.UserID,
			&a.Payload, &compressed, &algo, &a.CreatedAt,
		)
		if err != nil {
			return nil, apperror.NewInternal(fmt.Errorf("scan activity: %w", err))
		}

		if algo == compressionZstd && len(compressed) > 0 {
			decompressed, err := s.decoder.DecodeAll(compressed, nil)
			if err != nil {
				return nil, apperror.NewInternal(fmt.Errorf("decompress activity payload: %w", err))
			}
			a.Payload = decompressed
		}
		entries = append(entries, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("read activities: %w", err))
	}
	return entries, nil
}
