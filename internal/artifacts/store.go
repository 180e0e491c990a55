// Package artifacts persists the write-once JSON documents a job produces.
package artifacts

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/data/repos"
	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
	pkgerrors "github.com/WinterJet2021/MayWin-Core-Backend/internal/pkg/errors"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/objectstore"
)

const contentTypeJSON = "application/json"

// Store writes each (job, type) artifact at most once. With a nil blob store
// the document is kept inline in the metadata column.
type Store struct {
	log   *logger.Logger
	repo  repos.ScheduleArtifactRepo
	blobs objectstore.Store
}

func NewStore(baseLog *logger.Logger, repo repos.ScheduleArtifactRepo, blobs objectstore.Store) *Store {
	return &Store{
		log:   baseLog.With("component", "ArtifactStore"),
		repo:  repo,
		blobs: blobs,
	}
}

// Provider names where new artifact bodies go.
func (s *Store) Provider() string {
	if s.blobs == nil {
		return scheduling.StorageProviderDB
	}
	return s.blobs.Provider()
}

// WriteOnce stores content as the artifact of type t for jobID. When one
// already exists it is returned untouched with created=false.
func (s *Store) WriteOnce(dbc dbctx.Context, jobID uuid.UUID, t types.ArtifactType, content any) (*types.ScheduleArtifact, bool, error) {
	if !t.Valid() {
		return nil, false, fmt.Errorf("artifact type %q: %w", t, pkgerrors.ErrInvalidArgument)
	}
	existing, err := s.repo.GetByJobAndType(dbc, jobID, t)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	body, err := json.Marshal(content)
	if err != nil {
		return nil, false, fmt.Errorf("marshal %s: %w", t, err)
	}
	sum := sha256.Sum256(body)
	digest := hex.EncodeToString(sum[:])
	size := int64(len(body))
	ct := contentTypeJSON

	row := &types.ScheduleArtifact{
		JobID:         jobID,
		Type:          t,
		ContentType:   &ct,
		ContentSHA256: &digest,
		ContentBytes:  &size,
	}

	if s.blobs == nil {
		row.StorageProvider = scheduling.StorageProviderDB
		row.Metadata = datatypes.JSON(body)
	} else {
		ref, err := s.blobs.PutJSON(dbc.Ctx, []string{"jobs", jobID.String(), string(t) + ".json"}, body)
		if err != nil {
			return nil, false, fmt.Errorf("upload %s: %w", t, err)
		}
		meta, _ := json.Marshal(map[string]any{"schema": schemaOf(body)})
		bucket, key := ref.Bucket, ref.Key
		row.StorageProvider = ref.Provider
		row.Bucket = &bucket
		row.ObjectKey = &key
		row.Metadata = datatypes.JSON(meta)
	}

	stored, created, err := s.repo.CreateIfAbsent(dbc, row)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.log.Debug("artifact written",
			"job_id", jobID,
			"type", t,
			"provider", stored.StorageProvider,
			"bytes", size,
		)
	}
	return stored, created, nil
}

func (s *Store) Get(dbc dbctx.Context, jobID uuid.UUID, t types.ArtifactType) (*types.ScheduleArtifact, error) {
	return s.repo.GetByJobAndType(dbc, jobID, t)
}

func (s *Store) List(dbc dbctx.Context, jobID uuid.UUID) ([]*types.ScheduleArtifact, error) {
	return s.repo.ListByJob(dbc, jobID)
}

// Content returns the stored JSON document for a.
func (s *Store) Content(dbc dbctx.Context, a *types.ScheduleArtifact) (json.RawMessage, error) {
	if a == nil {
		return nil, pkgerrors.ErrNotFound
	}
	if a.StorageProvider == scheduling.StorageProviderDB {
		return json.RawMessage(a.Metadata), nil
	}
	if s.blobs == nil || a.ObjectKey == nil {
		return nil, fmt.Errorf("artifact %s stored in %q is not readable here", a.ID, a.StorageProvider)
	}
	ref := objectstore.Ref{Provider: a.StorageProvider, Key: *a.ObjectKey}
	if a.Bucket != nil {
		ref.Bucket = *a.Bucket
	}
	body, err := s.blobs.GetJSON(dbc.Ctx, ref)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func schemaOf(body []byte) string {
	var head struct {
		Schema string `json:"schema"`
	}
	_ = json.Unmarshal(body, &head)
	return head.Schema
}
