package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"

	"hoteldir/internal/domain"
)

const maxImageSide = 1600

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// NewListing is the public submission form.
type NewListing struct {
	Name            string
	Region          string
	City            string
	Description     string
	Location        string
	Address         string
	Surroundings    []string
	RecreationAreas string
	Type            string
	ContactName     string
	Email           string
	Phone           string
	Website         string
}

type ImageUpload struct {
	Filename string
	Body     io.Reader
}

type ModerationService struct {
	repo     domain.ListingRepository
	images   domain.ImageStore
	cache    domain.Cache
	maxImage int64
	now      func() time.Time
	newID    func() string
}

// NewModerationService accepts a nil image store; uploads are then rejected.
func NewModerationService(r domain.ListingRepository, img domain.ImageStore, c domain.Cache, maxImage int64) *ModerationService {
	return &ModerationService{
		repo: r, images: img, cache: c, maxImage: maxImage,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// Submit validates the form and the optional image, then stores a pending,
// unpaid listing.
func (s *ModerationService) Submit(ctx context.Context, in NewListing, img *ImageUpload) (domain.Listing, error) {
	if err := validateNew(in); err != nil {
		return domain.Listing{}, err
	}
	var jpeg []byte
	if img != nil {
		var err error
		if jpeg, err = s.prepareImage(img); err != nil {
			return domain.Listing{}, err
		}
	}

	l := domain.Listing{
		ID:              s.newID(),
		Name:            strings.TrimSpace(in.Name),
		Region:          strings.TrimSpace(in.Region),
		City:            strings.TrimSpace(in.City),
		Description:     strings.TrimSpace(in.Description),
		Location:        strings.TrimSpace(in.Location),
		Address:         strings.TrimSpace(in.Address),
		Surroundings:    cleanList(in.Surroundings),
		RecreationAreas: strings.TrimSpace(in.RecreationAreas),
		Type:            strings.TrimSpace(in.Type),
		Status:          domain.StatusPending,
		Paid:            false,
		ContactName:     strings.TrimSpace(in.ContactName),
		Email:           strings.TrimSpace(in.Email),
		Phone:           strings.TrimSpace(in.Phone),
		Website:         strings.TrimSpace(in.Website),
		CreatedAt:       s.now().UTC(),
	}

	if jpeg != nil {
		key := "listings/" + l.ID + ".jpg"
		url, err := s.images.Put(ctx, key, "image/jpeg", bytes.NewReader(jpeg))
		if err != nil {
			return domain.Listing{}, fmt.Errorf("store image: %w", err)
		}
		l.ImageKey, l.ImageURL = &key, &url
	}

	if err := s.repo.CreateListing(ctx, l); err != nil {
		if l.ImageKey != nil {
			s.dropImage(ctx, *l.ImageKey)
		}
		return domain.Listing{}, err
	}
	return l, nil
}

func (s *ModerationService) List(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	return s.repo.ListListings(ctx, f)
}

func (s *ModerationService) Get(ctx context.Context, id string) (domain.Listing, error) {
	return s.repo.GetListing(ctx, id)
}

// Update applies a partial edit. Moving a listing out of pending stamps the
// approval time; price and paid are only accepted together with such a move.
func (s *ModerationService) Update(ctx context.Context, id string, p domain.ListingPatch) (domain.Listing, error) {
	if err := validatePatch(p); err != nil {
		return domain.Listing{}, err
	}
	if p.Status != nil && *p.Status != domain.StatusPending {
		now := s.now().UTC()
		p.ApprovedAt = &now
	} else if p.Price != nil || p.Paid != nil {
		return domain.Listing{}, fmt.Errorf("%w: price and paid require a non-pending status", domain.ErrValidation)
	}
	if p.Surroundings != nil {
		cl := cleanList(*p.Surroundings)
		p.Surroundings = &cl
	}

	l, err := s.repo.UpdateListing(ctx, id, p)
	if err != nil {
		return domain.Listing{}, err
	}
	s.invalidateCatalog(ctx)
	return l, nil
}

// Delete removes the listing and then, best effort, its stored image.
func (s *ModerationService) Delete(ctx context.Context, id string) error {
	l, err := s.repo.DeleteListing(ctx, id)
	if err != nil {
		return err
	}
	if l.ImageKey != nil {
		s.dropImage(ctx, *l.ImageKey)
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *ModerationService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, catalogCacheKey); err != nil {
		log.Warn().Err(err).Msg("catalog cache eviction failed")
	}
}

func (s *ModerationService) dropImage(ctx context.Context, key string) {
	if s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("image delete failed")
	}
}

// prepareImage checks type and size, then re-encodes the image as a JPEG
// that fits within maxImageSide.
func (s *ModerationService) prepareImage(img *ImageUpload) ([]byte, error) {
	if s.images == nil {
		return nil, fmt.Errorf("%w: image uploads are disabled", domain.ErrValidation)
	}
	raw, err := io.ReadAll(io.LimitReader(img.Body, s.maxImage+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: image is empty", domain.ErrValidation)
	}
	if int64(len(raw)) > s.maxImage {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrValidation, s.maxImage)
	}
	if ct := http.DetectContentType(raw); !allowedImageTypes[ct] {
		return nil, fmt.Errorf("%w: image type %s is not allowed", domain.ErrValidation, ct)
	}
	decoded, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: image cannot be decoded", domain.ErrValidation)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Fit(decoded, maxImageSide, maxImageSide, imaging.Lanczos), imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func validateNew(in NewListing) error {
	var missing []string
	for _, f := range []struct{ name, v string }{
		{"name", in.Name}, {"region", in.Region}, {"city", in.City},
		{"description", in.Description}, {"location", in.Location},
		{"address", in.Address}, {"type", in.Type},
	} {
		if strings.TrimSpace(f.v) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

func validatePatch(p domain.ListingPatch) error {
	for _, f := range []struct {
		name string
		v    *string
	}{
		{"name", p.Name}, {"region", p.Region}, {"city", p.City},
		{"description", p.Description}, {"location", p.Location},
		{"address", p.Address}, {"type", p.Type},
	} {
		if f.v != nil && strings.TrimSpace(*f.v) == "" {
			return fmt.Errorf("%w: %s cannot be empty", domain.ErrValidation, f.name)
		}
	}
	if p.Price != nil && *p.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", domain.ErrValidation)
	}
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
