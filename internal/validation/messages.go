package validation

// defaultMessages maps "Struct.path.tag" or "field.tag" to the message shown to clients.
func defaultMessages() map[string]string {
	return map[string]string{
		"name.required": "Name is required",
		"name.min":      "Name must be at least 3 characters long",
		"name.max":      "Name must be at most 50 characters long",

		"email.required": "Email is required",
		"email.email":    "Invalid email format",

		"password.required":                  "Password is required",
		"RegisterRequest.password.min":       "Password must be at least 8 characters long",
		"UpdatePasswordRequest.password.min": "8 characters minimum",
		"new_password.min":                   "8 characters minimum",

		"role.required": "Role is required",
		"role.oneof":    "Invalid role. Valid roles are SUPER_ADMIN, EVENT_OWNER, BASE_USER",

		"company.required": "Company name is required for event owners",
		"company.min":      "Company name must be at least 3 characters long",
		"company.max":      "Company name must be at most 50 characters long",

		"companyId.required_if": "Company ID is required for base users",

		"refreshToken.required": "Refresh token is required",

		"CreateEventRequest.name.required":              "Event name is required",
		"CreateEventRequest.ticketLevels.name.required": "Ticket level name is required",

		"date.required":     "Date is required",
		"location.required": "Location is required",
		"price.required":    "Price is required",
		"price.gte":         "Price must be greater than or equal to 0",
	}
}
