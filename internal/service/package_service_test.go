package service

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bhramann/marketplace-api/internal/domain"
)

const testPublicBase = "https://cdn.example.com/test-bucket"

func inlinePNG(payload string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

type fakeStorage struct {
	mu        sync.Mutex
	uploads   []string
	removed   []string
	uploadErr error
	// removeErrFor fails Remove for a single object name.
	removeErrFor string
}

func (s *fakeStorage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploads = append(s.uploads, objectName)
	return bucket + "/" + objectName, nil
}

func (s *fakeStorage) Remove(ctx context.Context, bucket, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeErrFor != "" && objectName == s.removeErrFor {
		return errors.New("remove failed")
	}
	s.removed = append(s.removed, objectName)
	return nil
}

type memoryPackageRepo struct {
	packages    map[uuid.UUID]*domain.Package
	createCalls int
}

func newMemoryPackageRepo() *memoryPackageRepo {
	return &memoryPackageRepo{packages: make(map[uuid.UUID]*domain.Package)}
}

func (r *memoryPackageRepo) Create(ctx context.Context, pkg *domain.Package) (*domain.Package, error) {
	r.createCalls++
	stored := *pkg
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.packages[stored.ID] = &stored
	result := stored
	return &result, nil
}

func (r *memoryPackageRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Package, error) {
	pkg, ok := r.packages[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	result := *pkg
	return &result, nil
}

func (r *memoryPackageRepo) ListActive(ctx context.Context, filter domain.PackageFilter) ([]domain.Package, error) {
	var out []domain.Package
	for _, pkg := range r.packages {
		if pkg.IsActive() {
			out = append(out, *pkg)
		}
	}
	return out, nil
}

func (r *memoryPackageRepo) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]domain.Package, error) {
	var out []domain.Package
	for _, pkg := range r.packages {
		if pkg.CreatedBy == creatorID {
			out = append(out, *pkg)
		}
	}
	return out, nil
}

func (r *memoryPackageRepo) Update(ctx context.Context, pkg *domain.Package) (*domain.Package, error) {
	if _, ok := r.packages[pkg.ID]; !ok {
		return nil, sql.ErrNoRows
	}
	stored := *pkg
	stored.UpdatedAt = time.Now()
	r.packages[stored.ID] = &stored
	result := stored
	return &result, nil
}

func (r *memoryPackageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.packages[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.packages, id)
	return nil
}

func newTestPackageService(t *testing.T, storage *fakeStorage, repo *memoryPackageRepo) *PackageService {
	t.Helper()
	assets, err := NewAssetPipeline(storage, AssetPipelineConfig{
		Bucket:        "test-bucket",
		PublicBaseURL: testPublicBase,
	})
	if err != nil {
		t.Fatalf("NewAssetPipeline returned error: %v", err)
	}
	return NewPackageService(repo, assets)
}

func basePackage() *domain.Package {
	return &domain.Package{
		Name:        "Himalayan Escape",
		Description: "Seven days in the mountains",
		Location:    "Manali",
	}
}

func TestCreateNormalizesInlineImages(t *testing.T) {
	storage := &fakeStorage{}
	repo := newMemoryPackageRepo()
	svc := newTestPackageService(t, storage, repo)

	pkg := basePackage()
	pkg.MainPhotos = domain.StringList{
		inlinePNG("photo-a"),
		"https://elsewhere.example.com/photo-b.jpg",
		inlinePNG("photo-c"),
	}
	pkg.Highlights = domain.Highlights{{ID: 1, Title: "Sunrise", Image: inlinePNG("sunrise")}}
	pkg.Stays = domain.Stays{{ID: 1, Hotel: "Pinewood", Images: []string{inlinePNG("room"), "https://elsewhere.example.com/lobby.jpg"}}}

	creator := uuid.New()
	created, err := svc.Create(context.Background(), creator, pkg)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.CreatedBy != creator {
		t.Fatalf("expected createdBy %s, got %s", creator, created.CreatedBy)
	}
	if created.Status != domain.PackageStatusActive {
		t.Fatalf("expected default active status, got %q", created.Status)
	}

	if created.MainPhotos[1] != "https://elsewhere.example.com/photo-b.jpg" {
		t.Fatalf("expected pass-through URL untouched, got %q", created.MainPhotos[1])
	}
	for _, i := range []int{0, 2} {
		if !strings.HasPrefix(created.MainPhotos[i], testPublicBase+"/mainPhotos/") {
			t.Fatalf("main photo %d not rewritten: %q", i, created.MainPhotos[i])
		}
	}
	if created.MainPhotos[0] == created.MainPhotos[2] {
		t.Fatalf("expected distinct object names per upload")
	}
	if !strings.HasPrefix(created.Highlights[0].Image, testPublicBase+"/highlights/") {
		t.Fatalf("highlight image not rewritten: %q", created.Highlights[0].Image)
	}
	if !strings.HasPrefix(created.Stays[0].Images[0], testPublicBase+"/stays/") {
		t.Fatalf("stay image not rewritten: %q", created.Stays[0].Images[0])
	}
	if created.Stays[0].Images[1] != "https://elsewhere.example.com/lobby.jpg" {
		t.Fatalf("expected stay pass-through URL untouched, got %q", created.Stays[0].Images[1])
	}
	if len(storage.uploads) != 4 {
		t.Fatalf("expected 4 uploads, got %d", len(storage.uploads))
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	storage := &fakeStorage{}
	repo := newMemoryPackageRepo()
	svc := newTestPackageService(t, storage, repo)

	pkg := basePackage()
	pkg.MainPhotos = domain.StringList{inlinePNG("once")}

	created, err := svc.Create(context.Background(), uuid.New(), pkg)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	before := len(storage.uploads)

	// A second pass over the already-normalized record uploads nothing.
	updated, err := svc.Update(context.Background(), created.CreatedBy, created)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if len(storage.uploads) != before {
		t.Fatalf("expected no new uploads, got %d extra", len(storage.uploads)-before)
	}
	if updated.MainPhotos[0] != created.MainPhotos[0] {
		t.Fatalf("expected stable URL, got %q", updated.MainPhotos[0])
	}
}

func TestCreateFailsWholeCallOnUploadError(t *testing.T) {
	storage := &fakeStorage{uploadErr: errors.New("storage unavailable")}
	repo := newMemoryPackageRepo()
	svc := newTestPackageService(t, storage, repo)

	pkg := basePackage()
	pkg.MainPhotos = domain.StringList{inlinePNG("doomed")}

	if _, err := svc.Create(context.Background(), uuid.New(), pkg); err == nil {
		t.Fatalf("expected error when an upload fails")
	}
	if repo.createCalls != 0 {
		t.Fatalf("expected no persistence when uploads fail, got %d create calls", repo.createCalls)
	}
	if strings.HasPrefix(pkg.MainPhotos[0], testPublicBase) {
		t.Fatalf("expected no field rewriting on failure")
	}
}

func TestCreateRejectsMalformedInlinePayload(t *testing.T) {
	storage := &fakeStorage{}
	repo := newMemoryPackageRepo()
	svc := newTestPackageService(t, storage, repo)

	pkg := basePackage()
	pkg.MainPhotos = domain.StringList{"data:image/png;base64,%%%not-base64%%%"}

	_, err := svc.Create(context.Background(), uuid.New(), pkg)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if repo.createCalls != 0 {
		t.Fatalf("expected no persistence for malformed payloads")
	}
}

func TestDeletePurgesOwnedBlobs(t *testing.T) {
	storage := &fakeStorage{}
	repo := newMemoryPackageRepo()
	svc := newTestPackageService(t, storage, repo)

	pkg := basePackage()
	pkg.MainPhotos = domain.StringList{
		testPublicBase + "/mainPhotos/one.png",
		"https://elsewhere.example.com/keep.jpg",
	}
	pkg.Stays = domain.Stays{{ID: 1, Hotel: "Pinewood", Images: []string{testPublicBase + "/stays/two.png"}}}

	creator := uuid.New()
	created, err := svc.Create(context.Background(), creator, pkg)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.Delete(context.Background(), creator, created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := repo.FindByID(context.Background(), created.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected record removed, got %v", err)
	}

	want := map[string]bool{"mainPhotos/one.png": true, "stays/two.png": true}
	if len(storage.removed) != len(want) {
		t.Fatalf("expected %d removals, got %v", len(want), storage.removed)
	}
	for _, name := range storage.removed {
		if !want[name] {
			t.Fatalf("unexpected removal %q", name)
		}
	}
}

func TestDeleteSurvivesFailedBlobRemoval(t *testing.T) {
	storage := &fakeStorage{removeErrFor: "mainPhotos/stuck.png"}
	repo := newMemoryPackageRepo()
	svc := newTestPackageService(t, storage, repo)

	pkg := basePackage()
	pkg.MainPhotos = domain.StringList{
		testPublicBase + "/mainPhotos/stuck.png",
		testPublicBase + "/mainPhotos/fine.png",
	}

	creator := uuid.New()
	created, err := svc.Create(context.Background(), creator, pkg)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.Delete(context.Background(), creator, created.ID); err != nil {
		t.Fatalf("expected delete to succeed despite a stuck blob, got %v", err)
	}
	if len(storage.removed) != 1 || storage.removed[0] != "mainPhotos/fine.png" {
		t.Fatalf("expected the remaining blob removed, got %v", storage.removed)
	}
}

func TestUpdateForbiddenForNonCreator(t *testing.T) {
	storage := &fakeStorage{}
	repo := newMemoryPackageRepo()
	svc := newTestPackageService(t, storage, repo)

	created, err := svc.Create(context.Background(), uuid.New(), basePackage())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	stranger := uuid.New()
	if _, err := svc.Update(context.Background(), stranger, created); !errors.Is(err, ErrPackageForbidden) {
		t.Fatalf("expected ErrPackageForbidden, got %v", err)
	}
	if err := svc.Delete(context.Background(), stranger, created.ID); !errors.Is(err, ErrPackageForbidden) {
		t.Fatalf("expected ErrPackageForbidden on delete, got %v", err)
	}
}

func TestUpdatePreservesCreator(t *testing.T) {
	storage := &fakeStorage{}
	repo := newMemoryPackageRepo()
	svc := newTestPackageService(t, storage, repo)

	creator := uuid.New()
	created, err := svc.Create(context.Background(), creator, basePackage())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	modified := *created
	modified.Name = "Himalayan Escape Deluxe"
	modified.CreatedBy = uuid.New() // must be ignored

	updated, err := svc.Update(context.Background(), creator, &modified)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.CreatedBy != creator {
		t.Fatalf("expected creator to be immutable, got %s", updated.CreatedBy)
	}
	if updated.Name != "Himalayan Escape Deluxe" {
		t.Fatalf("expected name change to persist, got %q", updated.Name)
	}
}

func TestGetActiveByIDHidesInactive(t *testing.T) {
	storage := &fakeStorage{}
	repo := newMemoryPackageRepo()
	svc := newTestPackageService(t, storage, repo)

	pkg := basePackage()
	pkg.Status = domain.PackageStatusInactive

	creator := uuid.New()
	created, err := svc.Create(context.Background(), creator, pkg)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.GetActiveByID(context.Background(), created.ID); !errors.Is(err, ErrPackageNotFound) {
		t.Fatalf("expected inactive package hidden from public lookup, got %v", err)
	}
	// The creator still sees it.
	if _, err := svc.GetOwned(context.Background(), creator, created.ID); err != nil {
		t.Fatalf("expected creator access to inactive package, got %v", err)
	}

	mine, err := svc.ListByCreator(context.Background(), creator)
	if err != nil || len(mine) != 1 {
		t.Fatalf("expected creator listing to include inactive package, got %v %v", mine, err)
	}
	public, err := svc.ListActive(context.Background(), domain.PackageFilter{})
	if err != nil || len(public) != 0 {
		t.Fatalf("expected public listing to exclude inactive package, got %v %v", public, err)
	}
}

func TestCreateValidation(t *testing.T) {
	storage := &fakeStorage{}
	repo := newMemoryPackageRepo()
	svc := newTestPackageService(t, storage, repo)

	pkg := basePackage()
	pkg.Name = "  "
	if _, err := svc.Create(context.Background(), uuid.New(), pkg); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank name, got %v", err)
	}

	pkg = basePackage()
	pkg.Status = "archived"
	if _, err := svc.Create(context.Background(), uuid.New(), pkg); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}
}
