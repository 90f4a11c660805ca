package client

import (
	"context"
	"encoding/json"
)

type LoginResult struct {
	RequireOTP bool   `json:"requireOtp"`
	UserID     string `json:"userId"`
}

type Session struct {
	Token         string `json:"token"`
	UserID        string `json:"userId"`
	Role          string `json:"role"`
	AssignedSites []uint `json:"assignedSites,omitempty"`
}

type AuthEndpoint struct {
	transport *Transport
}

func (ep *AuthEndpoint) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	resp, err := ep.transport.Post(ctx, "/api/v1/auth/login", map[string]string{
		"identifier": identifier,
		"password":   password,
	}, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data LoginResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Data, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

func (ep *AuthEndpoint) VerifyOTP(ctx context.Context, identifier, otp, deviceID string) (*Session, error) {
	resp, err := ep.transport.Post(ctx, "/api/v1/auth/verify-otp", map[string]string{
		"identifier": identifier,
		"otp":        otp,
		"deviceId":   deviceID,
	}, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data Session `json:"data"`
	}
	if err := json.Unmarshal(resp.Data, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

func (ep *AuthEndpoint) SupervisorLogin(ctx context.Context, username, password string) (*Session, error) {
	resp, err := ep.transport.Post(ctx, "/api/v1/auth/supervisor/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data Session `json:"data"`
	}
	if err := json.Unmarshal(resp.Data, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}
