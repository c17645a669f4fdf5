package license

import (
	"context"
	"errors"
	"time"

	"license-tracker/pkg/authz"
	"license-tracker/pkg/config"
	"license-tracker/pkg/db/pagination"
	"license-tracker/pkg/dns"
	"license-tracker/pkg/errutil"
	"license-tracker/pkg/sequence"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	repo  Repository
	node  *snowflake.Node
	seq   sequence.Generator
	authz authz.Authorizer
	mx    dns.MXVerifier
	now   func() time.Time
}

type Params struct {
	fx.In

	Config     *config.Config
	Repository Repository
	Node       *snowflake.Node
	Authorizer authz.Authorizer
	Sequence   sequence.Generator `optional:"true"`
}

func NewService(p Params) *Service {
	s := &Service{
		repo:  p.Repository,
		node:  p.Node,
		seq:   p.Sequence,
		authz: p.Authorizer,
		now:   time.Now,
	}
	if p.Config.Validation.CheckMX {
		s.mx = dns.NewResolver()
	}
	return s
}

type ListLicensesResponse struct {
	Licenses []*License           `json:"licenses"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

func (s *Service) AddLicense(ctx context.Context, actor authz.Principal, req AddLicenseRequest) (*License, error) {
	if err := s.authz.Authorize(actor, authz.ResourceLicense, authz.ActionCreate).Err(); err != nil {
		return nil, err
	}

	req.normalize()
	if err := s.validateAdd(ctx, req); err != nil {
		return nil, err
	}

	l := &License{
		ID:                s.node.Generate().String(),
		Code:              s.nextCode(ctx),
		Name:              req.Name,
		ExpiryDate:        req.ExpiryDate,
		PrimaryEmail:      req.PrimaryEmail,
		PrimaryOwner:      req.PrimaryOwner,
		SecondaryEmail:    req.SecondaryEmail,
		SecondaryOwner:    req.SecondaryOwner,
		CreatedBy:         actor.UserID,
		CreatedByUsername: actor.Username,
		CreatedAt:         s.now().UTC(),
	}

	if err := s.repo.Create(ctx, l); err != nil {
		zap.L().Error("failed to create license", zap.String("name", l.Name), zap.Error(err))
		return nil, errutil.Internal("failed to create license", err)
	}

	zap.L().Info("license added",
		zap.String("license_id", l.ID),
		zap.String("code", l.Code),
		zap.String("created_by", actor.Username),
	)
	return l, nil
}

func (s *Service) GetLicense(ctx context.Context, actor authz.Principal, id string) (*License, error) {
	if err := s.authz.Authorize(actor, authz.ResourceLicense, authz.ActionRead).Err(); err != nil {
		return nil, err
	}

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "license not found", "failed to get license")
	}
	return l, nil
}

func (s *Service) ListLicenses(ctx context.Context, actor authz.Principal, req ListLicensesRequest) (*ListLicensesResponse, error) {
	if err := s.authz.Authorize(actor, authz.ResourceLicense, authz.ActionRead).Err(); err != nil {
		return nil, err
	}

	page := pagination.Pagination{Cursor: req.Cursor, Limit: req.Limit}.Normalize()
	params := ListParams{Query: req.Query, Limit: page.Limit}
	if page.Cursor != "" {
		cursor, err := pagination.DecodeCursor(page.Cursor)
		if err != nil {
			return nil, errutil.BadRequest("invalid cursor", err)
		}
		params.Cursor = cursor
	}

	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, errutil.Internal("failed to list licenses", err)
	}

	licenses, info, err := pagination.BuildCursorPageInfo(rows, page.Limit, func(l *License) pagination.Cursor {
		return pagination.Cursor{CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339Nano), ID: l.ID}
	})
	if err != nil {
		return nil, errutil.Internal("failed to build page", err)
	}

	return &ListLicensesResponse{Licenses: licenses, PageInfo: info}, nil
}

// SearchLicenses returns every license matching query, unpaged.
func (s *Service) SearchLicenses(ctx context.Context, actor authz.Principal, query string) ([]*License, error) {
	if err := s.authz.Authorize(actor, authz.ResourceLicense, authz.ActionRead).Err(); err != nil {
		return nil, err
	}

	licenses, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, errutil.Internal("failed to search licenses", err)
	}
	return licenses, nil
}

func (s *Service) UpdateExpiry(ctx context.Context, actor authz.Principal, id string, req UpdateExpiryRequest) (*License, error) {
	if err := s.authz.Authorize(actor, authz.ResourceLicense, authz.ActionUpdate).Err(); err != nil {
		return nil, err
	}

	if id == "" {
		return nil, errutil.BadRequest("missing license id", nil)
	}
	if !IsValidDate(req.NewExpiry) {
		return nil, errutil.BadRequest("invalid date format", nil,
			errutil.WithDetails(errutil.Detail{Field: "new_expiry", Message: "expected YYYY-MM-DD"}))
	}

	if err := s.repo.UpdateExpiry(ctx, id, req.NewExpiry, actor.Username, s.now().UTC()); err != nil {
		return nil, translate(err, "license not found", "failed to update license")
	}

	zap.L().Info("license expiry updated",
		zap.String("license_id", id),
		zap.String("expiry_date", req.NewExpiry),
		zap.String("updated_by", actor.Username),
	)

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "license not found", "failed to get license")
	}
	return l, nil
}

func (s *Service) DeleteLicense(ctx context.Context, actor authz.Principal, id string) error {
	if err := s.authz.Authorize(actor, authz.ResourceLicense, authz.ActionDelete).Err(); err != nil {
		return err
	}

	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return errutil.Internal("failed to delete license", err)
	}
	if n == 0 {
		return errutil.NotFound("license not found", nil)
	}

	zap.L().Info("license deleted", zap.String("license_id", id), zap.String("deleted_by", actor.Username))
	return nil
}

// ScanAll hands the scanner a full snapshot. It is not an API operation and
// carries no authorization check.
func (s *Service) ScanAll(ctx context.Context) ([]*License, error) {
	return s.repo.ScanAll(ctx)
}

func (s *Service) validateAdd(ctx context.Context, req AddLicenseRequest) error {
	var details []errutil.Detail
	if req.Name == "" {
		details = append(details, errutil.Detail{Field: "license_name", Message: "required"})
	}
	if req.PrimaryOwner == "" {
		details = append(details, errutil.Detail{Field: "owner_name", Message: "required"})
	}
	if !IsValidEmail(req.PrimaryEmail) {
		details = append(details, errutil.Detail{Field: "owner_email", Message: "invalid email format"})
	}
	if req.SecondaryEmail != "" && !IsValidEmail(req.SecondaryEmail) {
		details = append(details, errutil.Detail{Field: "secondary_email", Message: "invalid email format"})
	}
	if !IsValidDate(req.ExpiryDate) {
		details = append(details, errutil.Detail{Field: "expiry_date", Message: "invalid date format"})
	}
	if len(details) > 0 {
		return errutil.BadRequest(details[0].Message, nil, errutil.WithDetails(details...))
	}

	if s.mx != nil {
		for field, email := range map[string]string{"owner_email": req.PrimaryEmail, "secondary_email": req.SecondaryEmail} {
			if email == "" {
				continue
			}
			if err := s.mx.VerifyMX(ctx, dns.DomainOf(email)); err != nil {
				return errutil.BadRequest("email domain cannot receive mail", err,
					errutil.WithDetails(errutil.Detail{Field: field, Message: "no MX record"}))
			}
		}
	}
	return nil
}

// nextCode is best effort. A license without a code is still valid.
func (s *Service) nextCode(ctx context.Context) string {
	if s.seq == nil {
		return ""
	}
	code, err := s.seq.NextLicenseCode(ctx)
	if err != nil {
		zap.L().Warn("license code sequence unavailable", zap.Error(err))
		return ""
	}
	return code
}

func translate(err error, notFound, internal string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errutil.NotFound(notFound, err)
	}
	return errutil.Internal(internal, err)
}
