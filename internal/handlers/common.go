// common.go
//
// Shared helpers of the back-office HTTP handlers
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of backoffice-propsdb.
// backoffice-propsdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// backoffice-propsdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with backoffice-propsdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/backoffice-propsdb/internal/logger"
	"github.com/localnerve/backoffice-propsdb/internal/services"
	"github.com/localnerve/backoffice-propsdb/internal/store"
	"github.com/localnerve/backoffice-propsdb/internal/types"
	"github.com/localnerve/backoffice-propsdb/internal/utils"
	"go.uber.org/zap"
)

// respondError maps service errors onto the error response envelope
func respondError(c *fiber.Ctx, err error, op string) error {
	switch {
	case errors.Is(err, services.ErrVersion):
		return utils.VersionErrorResponse(c)
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrUnknownField):
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrInvalidInput):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, utils.ErrorTypeInput)
	}

	logger.Log.Error("request failed",
		zap.String("op", op),
		zap.String("url", c.OriginalURL()),
		zap.Error(err))
	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, op)
}

func invalidInput(c *fiber.Ctx, format string, args ...interface{}) error {
	return utils.ErrorResponse(c, fmt.Sprintf(format, args...), fiber.StatusBadRequest, utils.ErrorTypeInput)
}

// parseObject decodes the request body as a JSON object
func parseObject(c *fiber.Ctx) (map[string]interface{}, error) {
	var body map[string]interface{}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return nil, fmt.Errorf("body must be a JSON object: %w", err)
	}
	if body == nil {
		return nil, fmt.Errorf("body must be a JSON object")
	}
	return body, nil
}

// versionOf reads the optional "version" key of a flat document body
func versionOf(body map[string]interface{}) (types.Version, error) {
	var v types.Version
	raw, ok := body[store.KeyVersion]
	if !ok {
		return v, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return v, err
	}
	err = v.UnmarshalJSON(data)
	return v, err
}

// queryVersion reads the optional ?version= query parameter
func queryVersion(c *fiber.Ctx) (types.Version, error) {
	return types.ParseVersion(c.Query("version"))
}
