package rest

import (
	"errors"
	"log/slog"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/dto"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var _ ServerInterface = (*Server)(nil)

type Server struct {
	handlers *application.Handlers
	validate *validator.Validate
}

func NewServer(handlers *application.Handlers) *Server {
	return &Server{handlers: handlers, validate: validator.New()}
}

func (s *Server) CreateSite(c *fiber.Ctx) error {
	var req dto.CreateSiteRequest
	if err := s.bind(c, &req); err != nil {
		return s.writeError(c, err)
	}

	site, err := s.handlers.CreateSite.Execute(c.UserContext(), &req, c.Get(HeaderSource), identityFrom(c))
	if err != nil {
		return s.writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SiteResponse{Data: mapSite(site)})
}

func (s *Server) UpdateSite(c *fiber.Ctx, siteId uuid.UUID) error {
	var req dto.UpdateSiteRequest
	if err := s.bind(c, &req); err != nil {
		return s.writeError(c, err)
	}

	site, err := s.handlers.UpdateSite.Execute(c.UserContext(), siteId, &req, c.Get(HeaderSource), identityFrom(c))
	if err != nil {
		return s.writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.SiteResponse{Data: mapSite(site)})
}

func (s *Server) DeleteSite(c *fiber.Ctx, siteId uuid.UUID) error {
	if err := s.handlers.DeleteSite.Execute(c.UserContext(), siteId, identityFrom(c)); err != nil {
		return s.writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.MessageResponse{Message: "Site deleted"})
}

func (s *Server) CheckSubdomain(c *fiber.Ctx, name string) error {
	exists, err := s.handlers.CheckSubdomain.Query(c.UserContext(), name)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.SubdomainAvailabilityResponse{
		Data: dto.SubdomainAvailability{SubdomainExists: exists},
	})
}

func (s *Server) GetCustomDomain(c *fiber.Ctx, siteId uuid.UUID) error {
	status, err := s.handlers.GetCustomDomain.Query(c.UserContext(), siteId, identityFrom(c))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.CustomDomainStatusResponse{Data: status})
}

func (s *Server) AddCustomDomain(c *fiber.Ctx, siteId uuid.UUID) error {
	var req dto.CustomDomainRequest
	if err := s.bind(c, &req); err != nil {
		return s.writeError(c, err)
	}

	instructions, err := s.handlers.AddDomain.Execute(c.UserContext(), siteId, req, identityFrom(c))
	if err != nil {
		return s.writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.DNSInstructionsResponse{Data: dto.DNSInstructions{
		RecordType:  dto.DNSInstructionsRecordType(instructions.RecordType),
		RecordHost:  instructions.RecordHost,
		RecordValue: instructions.RecordValue,
	}})
}

func (s *Server) VerifyCustomDomain(c *fiber.Ctx, siteId uuid.UUID) error {
	var req dto.CustomDomainRequest
	if err := s.bind(c, &req); err != nil {
		return s.writeError(c, err)
	}

	verification, err := s.handlers.VerifyDomain.Execute(c.UserContext(), siteId, req, identityFrom(c))
	if err != nil {
		return s.writeError(c, err)
	}

	resp := dto.Verification{
		Verified:   verification.Verified,
		IsVerified: verification.IsVerified,
		SslIssued:  verification.SSLIssued,
	}
	if verification.SSLStatus != "" {
		status := string(verification.SSLStatus)
		resp.SslStatus = &status
	}
	return c.Status(fiber.StatusOK).JSON(dto.VerificationResponse{Data: resp})
}

func (s *Server) RemoveCustomDomain(c *fiber.Ctx, siteId uuid.UUID) error {
	var req dto.CustomDomainRequest
	if err := s.bind(c, &req); err != nil {
		return s.writeError(c, err)
	}

	if err := s.handlers.RemoveDomain.Execute(c.UserContext(), siteId, req, identityFrom(c)); err != nil {
		return s.writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.MessageResponse{Message: "Custom domain removed"})
}

func (s *Server) StripeWebhook(c *fiber.Ctx) error {
	if err := s.handlers.StripeWebhook.Execute(c.UserContext(), c.Body(), c.Get("Stripe-Signature")); err != nil {
		return s.writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.MessageResponse{Message: "Received"})
}

func (s *Server) bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return errs.NewValidationError("Invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			messages := make([]string, 0, len(invalid))
			for _, field := range invalid {
				messages = append(messages, field.Field()+" is "+field.Tag())
			}
			return errs.NewValidationError(messages...)
		}
		return errs.NewValidationError(err.Error())
	}
	return nil
}

// writeError maps application errors onto status codes. Anything unexpected
// is logged and answered with a generic message.
func (s *Server) writeError(c *fiber.Ctx, err error) error {
	var (
		validation   errs.ValidationError
		conflict     errs.ConflictError
		ssl          errs.SSLValidationError
		rejected     errs.ContentRejectedError
		permissions  errs.PermissionsError
		entitlement  errs.EntitlementError
		inconsistent errs.StateError
	)
	status, message := fiber.StatusInternalServerError, "Internal server error"
	switch {
	case errors.As(err, &validation), errors.As(err, &conflict), errors.As(err, &ssl), errors.As(err, &rejected):
		status, message = fiber.StatusBadRequest, err.Error()
	case errors.As(err, &permissions), errors.Is(err, errs.ErrSiteNotFound):
		status, message = fiber.StatusUnauthorized, "Unauthorized"
	case errors.As(err, &entitlement):
		status, message = fiber.StatusForbidden, entitlement.Reason
	case errors.As(err, &inconsistent):
		slog.Error("inconsistent state", "err", err, "path", c.Path(), "requestId", requestID(c))
		message = "Custom domain state is inconsistent, remove and re-add the domain"
	default:
		slog.Error("request failed", "err", err, "path", c.Path(), "requestId", requestID(c))
	}
	if status < fiber.StatusInternalServerError {
		slog.Debug("request rejected", "status", status, "err", err, "requestId", requestID(c))
	}
	return c.Status(status).JSON(dto.ErrorResponse{Message: message})
}

func mapSite(site *entity.Site) dto.Site {
	return dto.Site{
		Id:                      site.ID,
		OrganizationId:          site.OrganizationID,
		Domain:                  site.Domain,
		CustomDomain:            site.CustomDomain,
		DomainOwnershipVerified: site.DomainOwnershipVerified,
		SslIssued:               site.SSLIssued,
		Cid:                     site.CID,
		SiteContract:            site.SiteContract,
		CreatedAt:               site.CreatedAt,
		UpdatedAt:               site.UpdatedAt,
	}
}
