// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

// Package authz decides what each role may do, using Casbin RBAC.
//
// Subjects are roles (anonymous, member, admin); objects are resource groups
// (recipes, profile, lookup, chat); actions are read, write, delete and use.
// Roles inherit downwards: admin has everything member has, member has
// everything anonymous has. The model and policy are embedded and may be
// overridden from files.
//
// Ownership is not a Casbin concern: whether a member may delete a given
// recipe is decided by the store, which knows the author.
package authz
