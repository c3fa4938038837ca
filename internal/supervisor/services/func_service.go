// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package services

import (
	"context"
	"errors"

	"github.com/thejerf/suture/v4"
)

// FuncService adapts a run function to suture.Service. When run returns nil
// before ctx is done the service reports suture.ErrDoNotRestart, so one-shot
// jobs such as a bounded simulation finish without being restarted.
type FuncService struct {
	name string
	run  func(ctx context.Context) error
}

// NewFuncService names run for supervisor logs.
func NewFuncService(name string, run func(ctx context.Context) error) *FuncService {
	return &FuncService{name: name, run: run}
}

// Serve implements suture.Service.
func (f *FuncService) Serve(ctx context.Context) error {
	err := f.run(ctx)
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case err == nil:
		return suture.ErrDoNotRestart
	case errors.Is(err, context.Canceled):
		return suture.ErrDoNotRestart
	default:
		return err
	}
}

func (f *FuncService) String() string {
	return f.name
}
