// Package services contains server-side business logic. ObjectService
// orchestrates object upload and download over an ObjectStore: fragments are
// written before metadata, and ownership is checked before any fragment is
// read.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fragkeeper/internal/common"
	"github.com/dmitrijs2005/fragkeeper/internal/fragment"
	"github.com/dmitrijs2005/fragkeeper/internal/logging"
	"github.com/dmitrijs2005/fragkeeper/internal/object"
	"github.com/dmitrijs2005/fragkeeper/internal/server/keys"
	"github.com/dmitrijs2005/fragkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/fragkeeper/internal/server/models"
	"github.com/dmitrijs2005/fragkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultIOConcurrency bounds parallel fragment reads and writes per request.
const DefaultIOConcurrency = 8

// ObjectInfo describes a stored object without key material.
type ObjectInfo struct {
	ObjectID      string
	OwnerID       string
	KeyMode       string
	CreatedAt     time.Time
	FragmentCount int
	Size          int64
}

func infoFromMetadata(m *models.ObjectMetadata) *ObjectInfo {
	return &ObjectInfo{
		ObjectID:      m.ObjectID,
		OwnerID:       m.OwnerID,
		KeyMode:       m.KeyMode,
		CreatedAt:     m.CreatedAt,
		FragmentCount: m.FragmentCount,
		Size:          m.Size,
	}
}

// ObjectService uploads, downloads and describes encrypted objects.
type ObjectService struct {
	store       repomanager.ObjectStore
	pipeline    *object.Pipeline
	keys        keys.Policy
	metrics     *metrics.Metrics
	log         logging.Logger
	concurrency int
}

// NewObjectService wires the service. concurrency <= 0 selects
// DefaultIOConcurrency.
func NewObjectService(store repomanager.ObjectStore, p *object.Pipeline, policy keys.Policy,
	m *metrics.Metrics, log logging.Logger, concurrency int) *ObjectService {
	if concurrency <= 0 {
		concurrency = DefaultIOConcurrency
	}
	return &ObjectService{
		store:       store,
		pipeline:    p,
		keys:        policy,
		metrics:     m,
		log:         log.With("module", "objects"),
		concurrency: concurrency,
	}
}

// Upload encrypts plaintext for ownerID and persists it. All fragments are
// written before the metadata record, so a failed upload never leaves a
// readable but incomplete object.
func (s *ObjectService) Upload(ctx context.Context, ownerID string, plaintext []byte) (info *ObjectInfo, err error) {
	defer s.observe(ctx, metrics.OpUpload, time.Now(), &err)

	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}

	key, err := s.keys.NewKey()
	if err != nil {
		return nil, fmt.Errorf("object key: %w", err)
	}
	defer key.Wipe()

	d, err := s.pipeline.EncryptObject(plaintext, ownerID, key)
	if err != nil {
		return nil, err
	}

	wrapped, err := s.keys.Seal(d.ObjectID, key)
	if err != nil {
		return nil, fmt.Errorf("seal object key: %w", err)
	}

	if err := s.writeFragments(ctx, d.Fragments); err != nil {
		return nil, err
	}

	meta := &models.ObjectMetadata{
		ObjectID:      d.ObjectID,
		OwnerID:       d.OwnerID,
		KeyMode:       s.keys.Mode(),
		WrappedKey:    wrapped,
		CreatedAt:     d.CreatedAt,
		FragmentCount: d.FragmentCount,
		Size:          d.Size(),
	}
	if err := s.store.PutMetadata(ctx, meta); err != nil {
		return nil, fmt.Errorf("put metadata: %w", err)
	}

	s.metrics.ObjectsUploaded.Inc()
	s.metrics.BytesUploaded.Add(float64(len(plaintext)))
	s.log.Info(ctx, "object stored",
		"object_id", meta.ObjectID, "owner_id", ownerID, "fragments", meta.FragmentCount, "size", meta.Size)

	return infoFromMetadata(meta), nil
}

func (s *ObjectService) writeFragments(ctx context.Context, frags []fragment.Fragment) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, f := range frags {
		g.Go(func() error {
			if err := s.store.PutFragment(gctx, f.ObjectID, f.Index, f.Data); err != nil {
				return fmt.Errorf("put fragment %d: %w", f.Index, err)
			}
			s.metrics.FragmentsWritten.Inc()
			return nil
		})
	}
	return g.Wait()
}

// Download returns the plaintext of objectID if requesterID owns it.
// An unknown object and a foreign object both yield common.ErrAccessDenied.
func (s *ObjectService) Download(ctx context.Context, requesterID, objectID string) (plaintext []byte, err error) {
	defer s.observe(ctx, metrics.OpDownload, time.Now(), &err)

	meta, err := s.authorize(ctx, requesterID, objectID)
	if err != nil {
		return nil, err
	}

	key, err := s.keys.Open(meta)
	if err != nil {
		return nil, err
	}
	defer key.Wipe()

	indices, err := s.store.ListFragmentIndices(ctx, objectID)
	if err != nil {
		return nil, fmt.Errorf("list fragments: %w", err)
	}

	frags, err := s.readFragments(ctx, objectID, indices)
	if err != nil {
		return nil, err
	}

	d, err := object.NewDescriptor(meta.ObjectID, meta.OwnerID, key, meta.CreatedAt, meta.FragmentCount, frags)
	if err != nil {
		return nil, err
	}

	plaintext, err = s.pipeline.DecryptObject(d, key)
	if err != nil {
		return nil, err
	}

	s.metrics.ObjectsDownloaded.Inc()
	s.metrics.BytesDownloaded.Add(float64(len(plaintext)))
	s.log.Info(ctx, "object served", "object_id", objectID, "size", len(plaintext))

	return plaintext, nil
}

func (s *ObjectService) readFragments(ctx context.Context, objectID string, indices []int) ([]fragment.Fragment, error) {
	frags := make([]fragment.Fragment, len(indices))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, idx := range indices {
		g.Go(func() error {
			data, err := s.store.GetFragment(gctx, objectID, idx)
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("%w: index %d vanished after listing", common.ErrMissingFragment, idx)
			}
			if err != nil {
				return fmt.Errorf("get fragment %d: %w", idx, err)
			}
			frags[i] = fragment.Fragment{ObjectID: objectID, Index: idx, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frags, nil
}

// Stat returns the metadata of objectID if requesterID owns it.
func (s *ObjectService) Stat(ctx context.Context, requesterID, objectID string) (info *ObjectInfo, err error) {
	defer s.observe(ctx, metrics.OpStat, time.Now(), &err)

	meta, err := s.authorize(ctx, requesterID, objectID)
	if err != nil {
		return nil, err
	}
	return infoFromMetadata(meta), nil
}

// authorize loads the metadata and checks ownership. Absence is reported as
// access denied so callers cannot probe for other users' object ids.
// Ids that are not canonical UUID strings never reach the store.
func (s *ObjectService) authorize(ctx context.Context, requesterID, objectID string) (*models.ObjectMetadata, error) {
	if id, err := uuid.Parse(objectID); err != nil || id.String() != objectID {
		s.log.Debug(ctx, "malformed object id", "object_id", objectID)
		return nil, common.ErrAccessDenied
	}

	meta, err := s.store.GetMetadata(ctx, objectID)
	if errors.Is(err, common.ErrorNotFound) {
		s.log.Debug(ctx, "unknown object", "object_id", objectID)
		return nil, common.ErrAccessDenied
	}
	if err != nil {
		return nil, fmt.Errorf("get metadata: %w", err)
	}

	if err := object.Authorize(meta.OwnerID, requesterID); err != nil {
		s.log.Warn(ctx, "ownership check failed", "object_id", objectID, "requester_id", requesterID)
		return nil, err
	}
	return meta, nil
}

func (s *ObjectService) observe(ctx context.Context, op string, start time.Time, errp *error) {
	s.metrics.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err := *errp; err != nil {
		reason := FailureReason(err)
		s.metrics.Failures.WithLabelValues(op, reason).Inc()
		if reason != ReasonAccessDenied {
			s.log.Error(ctx, "operation failed", "operation", op, "reason", reason, "error", err)
		}
	}
}

// Failure reasons used as metric labels.
const (
	ReasonAccessDenied      = "access_denied"
	ReasonUnauthorized      = "unauthorized"
	ReasonKeyMismatch       = "key_mismatch"
	ReasonIntegrity         = "integrity"
	ReasonExpired           = "expired"
	ReasonMissingFragment   = "missing_fragment"
	ReasonDuplicateFragment = "duplicate_fragment"
	ReasonInvalid           = "invalid"
	ReasonConflict          = "conflict"
	ReasonCanceled          = "canceled"
	ReasonInternal          = "internal"
)

// FailureReason maps err to a stable, low-cardinality label.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, common.ErrAccessDenied):
		return ReasonAccessDenied
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return ReasonUnauthorized
	case errors.Is(err, common.ErrKeyMismatch):
		return ReasonKeyMismatch
	case errors.Is(err, common.ErrIntegrity):
		return ReasonIntegrity
	case errors.Is(err, common.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, common.ErrMissingFragment):
		return ReasonMissingFragment
	case errors.Is(err, common.ErrDuplicateFragment), errors.Is(err, common.ErrUnexpectedFragment):
		return ReasonDuplicateFragment
	case errors.Is(err, common.ErrInvalidDescriptor), errors.Is(err, common.ErrInvalidKey),
		errors.Is(err, common.ErrInvalidFragmentSize):
		return ReasonInvalid
	case errors.Is(err, common.ErrObjectExists):
		return ReasonConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	default:
		return ReasonInternal
	}
}
