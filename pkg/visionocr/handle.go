// Package visionocr is the boundary around the OCR engine: an opaque handle
// created from a profile or model paths, two pipeline entry points, and a
// fixed-capacity output protocol for their results.
//
// A Handle is not safe for concurrent use. Use one handle per goroutine, or
// a Pool.
package visionocr

import (
	"github.com/google/uuid"
	"github.com/ivlev/visionocr/internal/config"
	"github.com/ivlev/visionocr/internal/engine"
	ocrerrors "github.com/ivlev/visionocr/internal/errors"
	"github.com/ivlev/visionocr/internal/logging"
)

// Handle owns a loaded engine.
type Handle struct {
	ID      string
	Profile string

	engine *engine.Engine
	log    *logging.Logger
}

// New resolves opts and loads every model eagerly. It never returns a
// partially initialized handle.
func New(opts config.Options) (*Handle, error) {
	id := uuid.NewString()
	log := logging.NewLogger("visionocr "+id[:8], logging.ParseLevel(opts.LogLevel))

	set, err := config.Resolve(opts)
	if err != nil {
		return nil, ocrerrors.Config(err, "resolve models")
	}

	eng, err := engine.Load(set, log)
	if err != nil {
		return nil, err
	}

	log.Info("handle created", "profile", set.Profile, "cls", eng.HasClassifier())
	return &Handle{
		ID:      id,
		Profile: set.Profile,
		engine:  eng,
		log:     log,
	}, nil
}

// Create is New for callers that only check for nil. The error is logged.
func Create(opts config.Options) *Handle {
	h, err := New(opts)
	if err != nil {
		logging.NewLogger("visionocr", logging.ParseLevel(opts.LogLevel)).
			Error("create failed", "profile", opts.Profile, "code", ocrerrors.CodeOf(err), "error", err)
		return nil
	}
	return h
}

// CreateFromPaths creates a handle from explicit model directories and a
// dictionary file. With rec empty, det is taken as a profile name; with all
// arguments empty the default profile is used.
func CreateFromPaths(det, rec, dict, cls string) *Handle {
	if rec == "" {
		return Create(config.Options{Profile: det})
	}
	return Create(config.Options{
		DetModelDir:  det,
		RecModelDir:  rec,
		CharListFile: dict,
		ClsModelDir:  cls,
	})
}

// Destroy releases h. It must be called exactly once per created handle.
func Destroy(h *Handle) {
	h.Close()
}

// Close releases the models and scratch memory held by h.
func (h *Handle) Close() error {
	err := h.engine.Close()
	if err != nil {
		h.log.Warn("close", "error", err)
	}
	h.log.Debug("handle destroyed")
	h.engine = nil
	return err
}
