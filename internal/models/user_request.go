package models

// CreateUserRequest is used by admins to create accounts with a role
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"required,oneof=ADMIN USER"`
}

// UpdateUserRequest holds optional changes to an account
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Password *string `json:"password,omitempty" binding:"omitempty,min=8,max=72"`
	Role     *string `json:"role,omitempty" binding:"omitempty,oneof=ADMIN USER"`
}

// IDParam binds a UUID path parameter
type IDParam struct {
	ID string `uri:"id" binding:"required,uuid"`
}
