// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package models

import "time"

// Role is a user's authorization role. Roles inherit: admin > member > anonymous.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleMember    Role = "member"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAnonymous, RoleMember, RoleAdmin:
		return true
	}
	return false
}

// Provider records how a user signed up.
type Provider string

const (
	ProviderPassword  Provider = "password"
	ProviderOIDC      Provider = "oidc"
	ProviderAnonymous Provider = "anonymous"
)

// User is the stored account document.
//
// Email is lower-cased and unique; it is empty for anonymous users.
// PasswordHash is a bcrypt hash and must never reach a client, use Profile.
type User struct {
	ID              string         `json:"id"`
	Email           string         `json:"email,omitempty"`
	DisplayName     string         `json:"display_name,omitempty"`
	PasswordHash    string         `json:"password_hash,omitempty"`
	Provider        Provider       `json:"provider"`
	OIDCSubject     string         `json:"oidc_subject,omitempty"`
	Role            Role           `json:"role"`
	SavedRecipes    []string       `json:"saved_recipes"`
	UploadedRecipes []string       `json:"uploaded_recipes"`
	Ratings         map[string]int `json:"ratings,omitempty"`
	ShoppingList    []ShoppingItem `json:"shopping_list"`
	CreatedAt       time.Time      `json:"created_at"`
}

// IsAnonymous reports whether the account came from an anonymous sign-in.
func (u *User) IsAnonymous() bool {
	return u.Provider == ProviderAnonymous
}

// UserProfile is the client-facing view of a User.
type UserProfile struct {
	ID              string    `json:"id"`
	Email           string    `json:"email,omitempty"`
	DisplayName     string    `json:"display_name,omitempty"`
	Provider        Provider  `json:"provider"`
	Role            Role      `json:"role"`
	Anonymous       bool      `json:"anonymous"`
	SavedRecipes    []string  `json:"saved_recipes"`
	UploadedRecipes []string  `json:"uploaded_recipes"`
	CreatedAt       time.Time `json:"created_at"`
}

// Profile returns the client-facing view of u.
func (u *User) Profile() UserProfile {
	saved := u.SavedRecipes
	if saved == nil {
		saved = []string{}
	}
	uploaded := u.UploadedRecipes
	if uploaded == nil {
		uploaded = []string{}
	}
	return UserProfile{
		ID:              u.ID,
		Email:           u.Email,
		DisplayName:     u.DisplayName,
		Provider:        u.Provider,
		Role:            u.Role,
		Anonymous:       u.IsAnonymous(),
		SavedRecipes:    saved,
		UploadedRecipes: uploaded,
		CreatedAt:       u.CreatedAt,
	}
}

// ShoppingItem is one entry of a user's shopping list.
type ShoppingItem struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Quantity string    `json:"quantity,omitempty"`
	RecipeID string    `json:"recipe_id,omitempty"`
	Checked  bool      `json:"checked"`
	AddedAt  time.Time `json:"added_at"`
}
