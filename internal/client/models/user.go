// Package models defines the client-side session data: the cached user
// profile, request payloads for the Authentication Service, the JSON
// envelopes it answers with, and operation results handed to the UI.
package models

import (
	"encoding/json"
	"fmt"
)

// Role is the authorization role assigned by the server.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserProfile is the server's view of the signed-in user. It is cached
// locally as a read-through copy and is never authoritative.
type UserProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email,omitempty"`
	Username      string `json:"username,omitempty"`
	Name          string `json:"name,omitempty"`
	Lastname      string `json:"lastname,omitempty"`
	Role          Role   `json:"role,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

// ProfilePatch holds profile fields keyed by their JSON names.
type ProfilePatch map[string]any

// Clone returns a copy of u; nil stays nil.
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Merge applies patch on top of u (shallow, patch keys win) and returns the
// result as a new profile. Keys that are not profile fields are dropped.
func (u *UserProfile) Merge(patch ProfilePatch) (*UserProfile, error) {
	base, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}

	fields := map[string]any{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	for k, v := range patch {
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}

	var out UserProfile
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, fmt.Errorf("apply patch: %w", err)
	}
	return &out, nil
}
