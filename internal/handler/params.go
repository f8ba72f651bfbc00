// Package handler holds request parsing shared by the HTTP handlers.
package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// UUIDParam parses the path parameter name.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.NewBadRequest(fmt.Sprintf("invalid %s", name), err)
	}
	return id, nil
}

// UUIDQuery parses a required query parameter.
func UUIDQuery(c *gin.Context, name string) (uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return uuid.Nil, apperrors.NewValidation(fmt.Sprintf("%s is required", name), nil)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewValidation(fmt.Sprintf("invalid %s", name), err)
	}
	return id, nil
}

// OptionalUUIDQuery returns nil when the parameter is absent.
func OptionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	if c.Query(name) == "" {
		return nil, nil
	}
	id, err := UUIDQuery(c, name)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// TimeQuery parses an optional RFC 3339 query parameter.
func TimeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperrors.NewValidation(fmt.Sprintf("%s must be an RFC 3339 timestamp", name), err)
	}
	return &t, nil
}

// StatusesQuery parses a comma separated status list such as
// "PENDING,CONFIRMED".
func StatusesQuery(c *gin.Context, name string) ([]model.AppointmentStatus, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	var statuses []model.AppointmentStatus
	for _, part := range strings.Split(raw, ",") {
		st, err := model.ParseAppointmentStatus(strings.ToUpper(strings.TrimSpace(part)))
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// PaginationQuery reads limit and offset, clamping limit to MaxLimit.
func PaginationQuery(c *gin.Context) (model.Pagination, error) {
	p := model.Pagination{Limit: DefaultLimit}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return p, apperrors.NewValidation("limit must be a positive integer", err)
		}
		p.Limit = n
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return p, apperrors.NewValidation("offset must be a non-negative integer", err)
		}
		p.Offset = n
	}
	return p, nil
}
