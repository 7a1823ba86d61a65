package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/backoffice-propsdb/internal/auth"
	"github.com/localnerve/backoffice-propsdb/internal/middleware"
	"github.com/localnerve/backoffice-propsdb/internal/models"
	"github.com/localnerve/backoffice-propsdb/internal/services"
	"github.com/localnerve/backoffice-propsdb/internal/types"
	"github.com/localnerve/backoffice-propsdb/internal/utils"
)

// ProfileHandler serves the profile routes
type ProfileHandler struct {
	Profiles *services.ProfileService
}

// MeResponse is the caller's identity plus the stored profile, if any
type MeResponse struct {
	auth.Principal
	Profile *models.Profile `json:"profile,omitempty"`
}

// ProfileInput is the body of POST /api/profile.
// property_ids may be one id or a list, and ids may be strings or numbers.
type ProfileInput struct {
	UserID      string                           `json:"user_id"`
	Name        string                           `json:"name"`
	Email       string                           `json:"email"`
	Role        string                           `json:"role"`
	PropertyIDs types.FlexList[types.FlexString] `json:"property_ids"`
}

func (in ProfileInput) profile() models.Profile {
	ids := make([]string, 0, len(in.PropertyIDs))
	for _, id := range in.PropertyIDs.Slice() {
		if s := id.String(); s != "" {
			ids = append(ids, s)
		}
	}
	return models.Profile{
		UserID:      in.UserID,
		Name:        in.Name,
		Email:       in.Email,
		Role:        in.Role,
		PropertyIDs: ids,
	}
}

// ListProfiles handles GET /api/profile
// @Summary List profiles
// @Tags Profiles
// @Produce json
// @Success 200 {array} models.Profile
// @Security BearerAuth
// @Router /profile [get]
func (h *ProfileHandler) ListProfiles(c *fiber.Ctx) error {
	profiles, err := h.Profiles.ListProfiles(c.UserContext())
	if err != nil {
		return respondError(c, err, "listProfiles")
	}
	return utils.SuccessResponse(c, profiles, fiber.StatusOK)
}

// SaveProfile handles POST /api/profile
// @Summary Create or update a profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param body body ProfileInput true "Profile"
// @Success 200 {object} models.Profile
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /profile [post]
func (h *ProfileHandler) SaveProfile(c *fiber.Ctx) error {
	var input ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return invalidInput(c, "Invalid input: %v", err)
	}
	profile := input.profile()

	if err := h.Profiles.SaveProfile(c.UserContext(), &profile); err != nil {
		return respondError(c, err, "saveProfile")
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}

// Me handles GET /api/profile/me
// @Summary Get the caller's role
// @Description Returns the role claim of the caller's token and the stored profile when one exists
// @Tags Profiles
// @Produce json
// @Success 200 {object} MeResponse
// @Security BearerAuth
// @Router /profile/me [get]
func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	principal := middleware.CurrentPrincipal(c)
	out := MeResponse{Principal: *principal}

	profile, err := h.Profiles.GetProfile(c.UserContext(), principal.UserID)
	switch {
	case err == nil:
		out.Profile = profile
	case !errors.Is(err, services.ErrNotFound):
		return respondError(c, err, "me")
	}

	return utils.SuccessResponse(c, out, fiber.StatusOK)
}
