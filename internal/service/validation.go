package service

import (
	"github.com/eventdesk/event-ticketing/internal/api/dto"
	"github.com/eventdesk/event-ticketing/internal/validation"
)

// NewRequestValidator returns a validator with the request-level rules of every DTO registered.
func NewRequestValidator() *validation.Validator {
	v := validation.New()
	v.RegisterStructRule(dto.RegisterRequestRules, dto.RegisterRequest{})
	return v
}
